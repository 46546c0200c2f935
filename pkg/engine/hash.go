package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

// quality of the jpeg re-encoding done before hashing an image.
// Low on purpose: the re-encode only normalizes the byte stream,
// the jpeg itself is never kept.
const hashJpegQuality = 30

// OutputHash fingerprints an invocation output for cycle detection.
//
// Text hashes over its raw bytes. Images are decoded and re-encoded as
// baseline JPEG at a fixed low quality first, so that pixel-identical
// images hash identically even when their original encodings differ.
// This is not perceptual similarity: only exactly equal pixels collide.
// Anything else hashes over its string representation.
//
// OutputHash is a pure function; it fails only when image bytes cannot
// be decoded.
func OutputHash(output domain.Output) (string, error) {
	switch output.Modality {
	case domain.Text:
		return hashBytes([]byte(output.Text)), nil

	case domain.Image:
		img, _, err := image.Decode(bytes.NewReader(output.Image))
		if err != nil {
			return "", xe.WrapWithNote("output image is not decodable", err)
		}
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: hashJpegQuality}); err != nil {
			return "", xe.Wrap(err)
		}
		return hashBytes(buf.Bytes()), nil

	default:
		return hashBytes([]byte(fmt.Sprintf("%v", output))), nil
	}
}

func hashBytes(b []byte) string {
	digest := sha256.Sum256(b)
	return hex.EncodeToString(digest[:])
}
