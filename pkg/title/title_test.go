package title

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFileName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/roms/Final Fantasy VII (USA) (Disc 1).bin", "Final Fantasy VII"},
		{"Crash Bandicoot [SCUS-94900].cue", "Crash Bandicoot"},
		{"Metal_Gear_Solid_Disc_2.iso", "Metal Gear Solid"},
		{"SLUS_005.94 Resident Evil 2.img", "Resident Evil 2"},
		{"Vagrant Story (Europe) (En,Fr,De) (Rev 1) [!].cue", "Vagrant Story"},
		{"Spyro.pbp", "Spyro"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FromFileName(tt.path))
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Legend of Dragoon", "legend of dragoon"},
		{"Final Fantasy VII", "final fantasy 7"},
		{"Pokémon Stadium", "pokemon stadium"},
		{"Tom Clancy's Rainbow Six", "tom clancys rainbow six"},
		{"Castlevania: The Symphony of the Night", "castlevania symphony of the night"},
		{"Ratchet & Clank", "ratchet and clank"},
		{"I.Q. Intelligent Qube", "i q intelligent qube"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCompare(t *testing.T) {
	exact := Compare("Final Fantasy VII (USA) (Disc 1).bin", "Final Fantasy VII")
	assert.Equal(t, ConfidenceHigh, exact.Confidence)
	assert.InDelta(t, 1.0, exact.Score, 0.001)

	sequel := Compare("Resident Evil 2 (USA).cue", "Resident Evil 3: Nemesis")
	assert.Less(t, sequel.Score, exact.Score)

	unrelated := Compare("Tekken 3.bin", "Gran Turismo")
	assert.Equal(t, ConfidenceNone, unrelated.Confidence)

	empty := Compare("(USA).bin", "Anything")
	assert.Equal(t, ConfidenceNone, empty.Confidence)
	assert.Zero(t, empty.Score)
}

func TestConfidence_String(t *testing.T) {
	assert.Equal(t, "high", ConfidenceHigh.String())
	assert.Equal(t, "medium", ConfidenceMedium.String())
	assert.Equal(t, "low", ConfidenceLow.String())
	assert.Equal(t, "none", ConfidenceNone.String())
}
