package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalKeyEquivalence(t *testing.T) {

	assert := assert.New(t)

	variants := []string{"Max Speed", "max_speed", "MAX-SPEED", "maxspeed", " Max\tSpeed ", "max_-_speed", "MaxSpeed"}
	for _, v := range variants {
		assert.Equal("maxspeed", CanonicalKey(v), "variant %q", v)
	}
}

func TestCanonicalKeyKeepsOtherPunctuation(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("speed(rpm)", CanonicalKey("Speed (rpm)"))
	assert.Equal("temp.offset", CanonicalKey("Temp.Offset"))
	assert.NotEqual(CanonicalKey("Temp.Offset"), CanonicalKey("Temp Offset"))
}

func TestCanonicalKeyIsIdempotent(t *testing.T) {

	for _, v := range []string{"Process Data In", "vendor-text", "Ä_Ö ü"} {
		key := CanonicalKey(v)
		assert.Equal(t, key, CanonicalKey(key))
	}
}

func TestMatchableRejectsBlankNames(t *testing.T) {

	assert := assert.New(t)

	_, ok := matchable("")
	assert.False(ok)
	_, ok = matchable("   ")
	assert.False(ok)
	_, ok = matchable("__--")
	assert.False(ok)
	key, ok := matchable("Serial_Number")
	assert.True(ok)
	assert.Equal("serialnumber", key)
}
