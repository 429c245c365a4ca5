package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewGrantCode(t *testing.T) {
	at := time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		code := NewGrantCode(at)
		assert.Regexp(t, `^GA-202503-\d{4}$`, code)
	}
}
