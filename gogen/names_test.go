package gogen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoName(t *testing.T) {
	cases := map[string]string{
		"InitWindow":     "InitWindow",
		"rl_begin_mode":  "RlBeginMode",
		"MAX_LIGHTS":     "MaxLights",
		"MODE_A":         "ModeA",
		"FLAG_VSYNC_HINT": "FlagVsyncHint",
		"Vector3":        "Vector3",
		"audio_stream":   "AudioStream",
		"_internal":      "Internal",
		"x":              "X",
	}
	for in, want := range cases {
		require.Equal(t, want, GoName(in), "GoName(%q)", in)
	}
}

func TestGoNameLeadingDigit(t *testing.T) {
	require.Equal(t, "X2dMode", GoName("_2d_mode"))
}

func TestLoweredName(t *testing.T) {
	require.Equal(t, "initWindow", loweredName("InitWindow"))
	require.Equal(t, "width", loweredName("width"))
	// Collisions with predeclared names get a trailing underscore.
	require.Equal(t, "len_", loweredName("len"))
	require.Equal(t, "type_", loweredName("type"))
}
