package stt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseModelSize(t *testing.T) {
	th := Thresholds{LargeGB: 12, MediumGB: 8, SmallGB: 4}

	tests := []struct {
		name     string
		memGB    float64
		hasAccel bool
		want     ModelSize
	}{
		{"no accelerator ignores memory", 64, false, ModelSmall},
		{"large at threshold", 12, true, ModelLarge},
		{"large above threshold", 24, true, ModelLarge},
		{"medium just below large", 11.9, true, ModelMedium},
		{"medium at threshold", 8, true, ModelMedium},
		{"small at threshold", 4, true, ModelSmall},
		{"tiny below small", 3.9, true, ModelTiny},
		{"tiny at zero", 0, true, ModelTiny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseModelSize(tt.memGB, tt.hasAccel, th))
		})
	}
}
