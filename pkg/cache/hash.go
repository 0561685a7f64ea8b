package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// keyVersion changes whenever the encoded snapshot format changes, so
// entries written by an older build are never served.
const keyVersion = "v1"

// designKey names an encoded snapshot: "design:v1:<sha256>", where the
// hash covers the file digests in load order and the encoding options.
func designKey(digests []string, opts DesignKeyOpts) string {
	data, _ := json.Marshal(struct {
		Files []string      `json:"files"`
		Opts  DesignKeyOpts `json:"opts"`
	}{digests, opts})
	return "design:" + keyVersion + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. File digests and file cache
// entry names are built from it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
