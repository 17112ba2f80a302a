package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hupe1980/vecdb/index"
)

// Compile-time check to ensure Badger satisfies the Store interface.
var _ Store = (*Badger)(nil)

// Badger is a Store implementation backed by BadgerDB v4.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	InMemory bool

	// Logger receives badger's warnings and errors. Nil discards them.
	Logger *slog.Logger
}

// NewBadger creates a new BadgerDB-backed Store.
func NewBadger(bopts BadgerOptions) (*Badger, error) {
	if !bopts.InMemory && bopts.Dir == "" {
		return nil, errors.New("storage: BadgerOptions.Dir is required for on-disk mode")
	}

	dir := bopts.Dir
	if bopts.InMemory {
		dir = ""
	}

	dbOpts := badger.DefaultOptions(dir).
		WithInMemory(bopts.InMemory).
		WithLogger(badgerLogger{logger: bopts.Logger})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}

	return &Badger{db: db}, nil
}

// Put stores or replaces a record.
func (b *Badger) Put(_ context.Context, rec Record) error {
	val, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("storage: encode record %d: %w", rec.ID, err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.Index, rec.ID), val)
	})
}

// PutBatch stores or replaces several records in one write batch.
func (b *Badger) PutBatch(_ context.Context, recs []Record) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range recs {
		val, err := msgpack.Marshal(&recs[i])
		if err != nil {
			return fmt.Errorf("storage: encode record %d: %w", recs[i].ID, err)
		}
		if err := wb.Set(recordKey(recs[i].Index, recs[i].ID), val); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// Get returns the record stored under (t, id).
func (b *Badger) Get(_ context.Context, t index.Type, id int64) (Record, error) {
	var val []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(t, id))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, fmt.Errorf("%s %d: %w", t, id, ErrNotFound)
	}
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := msgpack.Unmarshal(val, &rec); err != nil {
		return Record{}, fmt.Errorf("storage: decode record %d: %w", id, err)
	}

	return rec, nil
}

// Delete removes the listed records. Missing ids are ignored.
func (b *Badger) Delete(_ context.Context, t index.Type, ids []int64) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, id := range ids {
		if err := wb.Delete(recordKey(t, id)); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// DeleteAll removes every record of an index type.
func (b *Badger) DeleteAll(_ context.Context, t index.Type) error {
	return b.db.DropPrefix(typePrefix(t))
}

// Count returns the number of records of an index type.
func (b *Badger) Count(_ context.Context, t index.Type) (int, error) {
	prefix := typePrefix(t)
	n := 0

	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		iterOpts.PrefetchValues = false

		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})

	return n, err
}

// Close closes the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}

func typePrefix(t index.Type) []byte {
	return []byte(t.String() + ":")
}

func recordKey(t index.Type, id int64) []byte {
	return binary.BigEndian.AppendUint64(typePrefix(t), uint64(id))
}

// badgerLogger forwards badger warnings and errors to slog and drops
// debug and info messages.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	if l.logger != nil {
		l.logger.Error(fmt.Sprintf(f, v...), "component", "badger")
	}
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	if l.logger != nil {
		l.logger.Warn(fmt.Sprintf(f, v...), "component", "badger")
	}
}

func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}
