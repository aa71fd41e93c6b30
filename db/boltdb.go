package db

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"

	"github.com/weaveworks/ofpath/topology"
)

// Store persists controller state in a single boltdb file. Values are
// gob encoded under string keys of one top-level bucket.
type Store struct {
	db *bolt.DB
}

var (
	versionIdent       = []byte("version")
	persistenceVersion = []byte{1, 0} // major.minor
	topBucket          = []byte("ofpath")
)

const topologyIdent = "topology"

// Open creates the file if needed. Files written by an incompatible
// major version are refused.
func Open(pathname string) (*Store, error) {
	db, err := bolt.Open(pathname, 0660, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "[boltDB] unable to open %s", pathname)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		top, err := tx.CreateBucketIfNotExists(topBucket)
		if err != nil {
			return err
		}
		switch version := top.Get(versionIdent); {
		case version == nil:
			return top.Put(versionIdent, persistenceVersion)
		case version[0] != persistenceVersion[0]:
			return errors.Errorf("[boltDB] cannot use persistence file %s - version %x", pathname, version)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Load decodes the value stored under ident into data, reporting
// whether there was one.
func (s *Store) Load(ident string, data interface{}) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(topBucket).Get([]byte(ident))
		if v == nil {
			return nil
		}
		found = true
		return gob.NewDecoder(bytes.NewReader(v)).Decode(data)
	})
	return found, errors.Wrapf(err, "[boltDB] loading %s", ident)
}

func (s *Store) Save(ident string, data interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return errors.Wrapf(err, "[boltDB] encoding %s", ident)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(topBucket).Put([]byte(ident), buf.Bytes())
	})
}

func (s *Store) SaveTopology(snapshot topology.Snapshot) error {
	return s.Save(topologyIdent, snapshot)
}

// LoadTopology returns the last saved snapshot, or an empty one if
// none was saved.
func (s *Store) LoadTopology() (topology.Snapshot, error) {
	var snapshot topology.Snapshot
	_, err := s.Load(topologyIdent, &snapshot)
	return snapshot, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
