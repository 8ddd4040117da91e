package network

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/paulmach/orb"
)

// networkData is the serializable form of a network. Only the feature
// geometry is stored; the spatial index is rebuilt on load.
type networkData struct {
	Lines []orb.LineString
	Count int64
}

// SaveToFile writes the network's features to a binary cache file so a
// parsed dataset can be reloaded without going through GeoJSON again.
func (n *Network) SaveToFile(filename string) error {
	lines := make([]orb.LineString, len(n.features))
	for i, f := range n.features {
		lines[i] = f.Line
	}

	data := networkData{
		Lines: lines,
		Count: int64(len(lines)),
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}

	return nil
}

// LoadFromFile reads a network cache written by SaveToFile and rebuilds the
// spatial index over it.
func LoadFromFile(filename string) (*Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data networkData
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode network: %w", err)
	}

	return New(data.Lines)
}
