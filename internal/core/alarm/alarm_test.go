package alarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSound(t *testing.T) {
	assert.Equal(t, SoundChime, NormalizeSound("chime"))
	assert.Equal(t, SoundBell, NormalizeSound("bell"))
	assert.Equal(t, SoundBeep, NormalizeSound("beep"))
	assert.Equal(t, SoundBeep, NormalizeSound(""))
	assert.Equal(t, SoundBeep, NormalizeSound("klaxon"))
}
