package assets

import (
	"github.com/minio/crc64nvme"
	"github.com/mr-tron/base58"
)

const hashLength = 8

// contentHash is a short, stable, URL safe digest of file contents.
func contentHash(data []byte) string {
	h := crc64nvme.New()
	h.Write(data)
	encoded := base58.Encode(h.Sum(nil))
	if len(encoded) > hashLength {
		encoded = encoded[:hashLength]
	}
	return encoded
}
