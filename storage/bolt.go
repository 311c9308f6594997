/* Copyright 2025 Formloom Authors
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package storage

import (
	"context"
	"log"
	"time"

	"github.com/formloom/formloom/form"

	json "github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

var (
	formsBucket = []byte("forms")

	// formsKey holds the whole collection as one JSON blob.  The
	// collection is small, order is significant, and every
	// mutation rewrites it anyway.
	formsKey = []byte("all")
)

// BoltStore is a Store backed by a bbolt file.
type BoltStore struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

// NewBoltStore takes a filename and returns a BoltStore.  Call Open
// before use.
func NewBoltStore(filename string) (*BoltStore, error) {
	return &BoltStore{
		filename: filename,
	}, nil
}

// Open opens the underlying bbolt file.
func (s *BoltStore) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Close closes the underlying bbolt file.
func (s *BoltStore) Close(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) logf(format string, args ...interface{}) {
	if s == nil {
		return
	}
	if s.Debug {
		log.Printf("BoltStore "+format, args...)
	}
}

// LoadAll reads the saved collection.  An empty or unreadable store
// degrades to an empty collection; the problem is logged, not
// returned.
func (s *BoltStore) LoadAll(ctx context.Context) []*form.FormSchema {
	if s == nil || s.db == nil {
		return []*form.FormSchema{}
	}

	var forms []*form.FormSchema
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(formsBucket)
		if b == nil {
			return nil
		}
		bs := b.Get(formsKey)
		if bs == nil {
			return nil
		}
		return json.Unmarshal(bs, &forms)
	})
	if err != nil {
		s.logf("LoadAll degrading to empty: %s", err)
		return []*form.FormSchema{}
	}
	if forms == nil {
		forms = []*form.FormSchema{}
	}

	s.logf("LoadAll found %d forms", len(forms))

	return forms
}

// SaveAll writes the whole collection, replacing whatever was there.
func (s *BoltStore) SaveAll(ctx context.Context, forms []*form.FormSchema) error {
	if s == nil || s.db == nil {
		return &IOError{Op: "save", Err: errNotOpen}
	}

	bs, err := json.Marshal(forms)
	if err != nil {
		return &IOError{Op: "save", Err: err}
	}

	s.logf("SaveAll writing %d forms (%d bytes)", len(forms), len(bs))

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(formsBucket)
		if err != nil {
			return err
		}
		return b.Put(formsKey, bs)
	})
	if err != nil {
		return &IOError{Op: "save", Err: err}
	}
	return nil
}
