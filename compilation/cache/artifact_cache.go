// Package cache provides a persistent store for compilation artifacts, keyed by a digest of the contract source,
// so repeated fuzzing runs over an unchanged contract skip the compiler toolchain entirely.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/ExtropyIO/Fuzzhead/compilation/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// artifactBucket is the bbolt bucket holding cached artifacts.
var artifactBucket = []byte("artifacts")

// ArtifactCache persists compiled contract artifacts to a bbolt database on disk.
type ArtifactCache struct {
	db *bbolt.DB
}

// cachedArtifact is the serialized form of a compiled contract stored in the database. The ABI is kept as its raw
// JSON definition and re-parsed on retrieval.
type cachedArtifact struct {
	Name         string          `json:"name"`
	SourcePath   string          `json:"sourcePath"`
	InitBytecode hexutil.Bytes   `json:"initBytecode"`
	Abi          json.RawMessage `json:"abi"`
}

// Open opens (or creates) an artifact cache database at the given path.
func Open(path string) (*ArtifactCache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.WithMessage(err, "could not open artifact cache")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(artifactBucket)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ArtifactCache{db: db}, nil
}

// Digest computes the cache key for a contract: a SHA-256 hash over the source bytes and the contract name.
func Digest(source []byte, contractName string) []byte {
	hasher := sha256.New()
	hasher.Write(source)
	hasher.Write([]byte(contractName))
	return hasher.Sum(nil)
}

// Get retrieves a cached artifact by digest. The boolean return indicates a cache hit.
func (c *ArtifactCache) Get(digest []byte) (*types.CompiledContract, bool, error) {
	var stored *cachedArtifact
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(artifactBucket).Get(digest)
		if data == nil {
			return nil
		}
		stored = &cachedArtifact{}
		return json.Unmarshal(data, stored)
	})
	if err != nil {
		return nil, false, errors.WithMessage(err, "could not read artifact cache")
	}
	if stored == nil {
		return nil, false, nil
	}

	parsedAbi, rawAbi, err := types.ParseABIFromInterface(stored.Abi)
	if err != nil {
		return nil, false, err
	}
	return &types.CompiledContract{
		Name:          stored.Name,
		SourcePath:    stored.SourcePath,
		InitBytecode:  stored.InitBytecode,
		Abi:           *parsedAbi,
		AbiDefinition: rawAbi,
	}, true, nil
}

// Put stores a compiled artifact under the given digest.
func (c *ArtifactCache) Put(digest []byte, contract *types.CompiledContract) error {
	serialized, err := json.Marshal(&cachedArtifact{
		Name:         contract.Name,
		SourcePath:   contract.SourcePath,
		InitBytecode: contract.InitBytecode,
		Abi:          contract.AbiDefinition,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(artifactBucket).Put(digest, serialized)
	})
	return errors.WithMessage(err, "could not write artifact cache")
}

// Close closes the underlying database.
func (c *ArtifactCache) Close() error {
	return c.db.Close()
}
