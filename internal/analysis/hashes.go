package analysis

import (
	"crypto/md5"  //nolint:gosec // identification hash, not used for integrity
	"crypto/sha1" //nolint:gosec // identification hash, not used for integrity
	"crypto/sha256"
	"encoding/hex"
)

// FileHashes holds the content digests of a buffer, each rendered as
// lower-case hexadecimal.
type FileHashes struct {
	MD5    string `json:"md5"`
	SHA1   string `json:"sha1"`
	SHA256 string `json:"sha256"`
}

// Hashes computes the MD5, SHA-1 and SHA-256 digests of data. The input is
// hashed byte-exact, with no normalization of any kind.
func Hashes(data []byte) FileHashes {
	md5Sum := md5.Sum(data)   //nolint:gosec
	sha1Sum := sha1.Sum(data) //nolint:gosec
	sha256Sum := sha256.Sum256(data)

	return FileHashes{
		MD5:    hex.EncodeToString(md5Sum[:]),
		SHA1:   hex.EncodeToString(sha1Sum[:]),
		SHA256: hex.EncodeToString(sha256Sum[:]),
	}
}
