package seqfile

// Mode selects how Open treats the underlying file.
type Mode int

const (
	// Read opens an existing file for random and sequential reads only.
	Read Mode = iota
	// Write creates a new file, failing if one already exists at path.
	Write
	// Overwrite creates a new file, truncating any existing one at path.
	Overwrite
	// Append reopens an existing file and resumes writing after its last
	// entry.
	Append
)

// Geometry fixes the bit widths and frame size of a file created by Write or
// Overwrite. It is ignored by Read and Append, which recover geometry from
// the file's existing header.
type Geometry struct {
	BitsPerFullEntry   uint8
	BitsPerOffsetEntry uint8
	OffsetsPerFrame    uint16
}
