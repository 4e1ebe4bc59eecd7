package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     string
	}{
		{name: "plain name", fileName: "session.m4a", want: "sessions/u1/j1/session.m4a"},
		{name: "unix path stripped", fileName: "/tmp/up/session.wav", want: "sessions/u1/j1/session.wav"},
		{name: "windows path stripped", fileName: `C:\rec\session.mp3`, want: "sessions/u1/j1/session.mp3"},
		{name: "empty name", fileName: "", want: "sessions/u1/j1/audio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey("u1", "j1", tt.fileName))
		})
	}
}
