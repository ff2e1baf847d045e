package types

// Blob is an image received from a client and not yet uploaded.
type Blob struct {
	Data        []byte
	Filename    string
	ContentType string
}

func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}
