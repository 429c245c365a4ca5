package service

import (
	"strings"
	"testing"

	"jelajah/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClustersCSV(t *testing.T) {
	in := strings.NewReader(
		"name,category,district,latitude,longitude,description\n" +
			"Kampung Santubong,homestay,Kuching,1.7169,110.3192,Riverside homestay village\n" +
			"Annah Rais Longhouse,culture,Padawan,1.1917,110.2764,\n")
	clusters, err := ParseClustersCSV(in)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, "Kampung Santubong", clusters[0].Name)
	assert.Equal(t, "HOMESTAY", clusters[0].Category)
	assert.Equal(t, "Kuching", clusters[0].District)
	assert.InDelta(t, 1.7169, clusters[0].Latitude, 1e-6)
	assert.Equal(t, "Riverside homestay village", clusters[0].Description)
	assert.Empty(t, clusters[1].Description)
}

func TestParseClustersCSVWithoutHeader(t *testing.T) {
	in := strings.NewReader("Bako Park,nature,Kuching,1.7167,110.4667\n")
	clusters, err := ParseClustersCSV(in)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "NATURE", clusters[0].Category)
}

func TestParseClustersCSVBadRowFailsWholeFile(t *testing.T) {
	in := strings.NewReader(
		"Good Place,food,Sibu,2.2878,111.8305\n" +
			"Bad Place,food,Sibu,not-a-number,111.8305\n")
	_, err := ParseClustersCSV(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "row 2")
}

func TestParseClustersCSVValidation(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"header only":      "name,category,district,latitude,longitude\n",
		"too few columns":  "Just A Name,food\n",
		"missing name":     ",food,Sibu,2.0,111.0\n",
		"missing category": "Place,,Sibu,2.0,111.0\n",
		"latitude range":   "Place,food,Sibu,95.0,111.0\n",
		"longitude range":  "Place,food,Sibu,2.0,190.0\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseClustersCSV(strings.NewReader(input))
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
