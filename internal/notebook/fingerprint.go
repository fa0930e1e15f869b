package notebook

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint is the hex SHA-256 of a notebook's source-only projection.
type Fingerprint string

// projectedCell keeps only what identifies the code and prose of a cell.
// Field order fixes the canonical serialization.
type projectedCell struct {
	Type   CellType `json:"cell_type"`
	Source string   `json:"source"`
}

type projection struct {
	Cells []projectedCell `json:"cells"`
}

// Fingerprint hashes the notebook's cell types and sources. Outputs,
// execution counts, cell metadata and notebook metadata do not contribute,
// so executing a notebook never changes its fingerprint.
func (nb *Notebook) Fingerprint() (Fingerprint, error) {
	p := projection{Cells: make([]projectedCell, len(nb.Cells))}
	for i, c := range nb.Cells {
		p.Cells[i] = projectedCell{Type: c.Type, Source: string(c.Source)}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("%w: encoding projection: %v", ErrMalformedNotebook, err)
	}

	sum := sha256.Sum256(data)
	return Fingerprint(hex.EncodeToString(sum[:])), nil
}
