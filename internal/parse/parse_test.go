package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCapacityGB(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  int
		expectErr bool
	}{
		{name: "Plain GB", raw: "16GB", expected: 16},
		{name: "Spaced GB with suffix", raw: "16 GB DDR5", expected: 16},
		{name: "SSD storage", raw: "512GB SSD", expected: 512},
		{name: "Terabytes", raw: "1TB NVMe", expected: 1024},
		{name: "Fractional terabytes", raw: "1.5 TB", expected: 1536},
		{name: "Short unit", raw: "32G", expected: 32},
		{name: "Bare number", raw: "8", expected: 8},
		{name: "Empty", raw: "", expectErr: true},
		{name: "No figure", raw: "integrated", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CapacityGB(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}

func TestDate(t *testing.T) {
	d, err := Date("2024-03-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = Date("2024-03-01T10:30:00+02:00")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), d)

	_, err = Date("01/03/2024")
	assert.Error(t, err)

	_, err = Date("2024-02-30")
	assert.Error(t, err)

	_, err = Date("  ")
	assert.Error(t, err)
}

func TestOptionalDate(t *testing.T) {
	d, err := OptionalDate("")
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = OptionalDate("2023-12-31")
	assert.NoError(t, err)
	if assert.NotNil(t, d) {
		assert.Equal(t, 2023, d.Year())
	}

	_, err = OptionalDate("yesterday")
	assert.Error(t, err)
}
