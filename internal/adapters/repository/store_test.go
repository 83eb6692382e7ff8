package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func storeContract(ctx context.Context, s Store) {
	Convey("When a missing key is read", func() {
		_, err := s.Get(ctx, "upg-calculator:v1")

		Convey("Then ErrNotFound is returned", func() {
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When a value is set and read back", func() {
		So(s.Set(ctx, "upg-calculator:v1", []byte(`{"subjects":[]}`)), ShouldBeNil)
		got, err := s.Get(ctx, "upg-calculator:v1")

		Convey("Then the bytes are unchanged", func() {
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, `{"subjects":[]}`)
		})

		Convey("And overwriting replaces the value", func() {
			So(s.Set(ctx, "upg-calculator:v1", []byte(`{"subjects":[{}]}`)), ShouldBeNil)
			got, err := s.Get(ctx, "upg-calculator:v1")
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, `{"subjects":[{}]}`)
		})

		Convey("And keys are independent", func() {
			So(s.Set(ctx, "other", []byte("x")), ShouldBeNil)
			got, err := s.Get(ctx, "upg-calculator:v1")
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, `{"subjects":[]}`)
		})

		Convey("And deleting removes it", func() {
			So(s.Delete(ctx, "upg-calculator:v1"), ShouldBeNil)
			_, err := s.Get(ctx, "upg-calculator:v1")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(s.Delete(ctx, "upg-calculator:v1"), ShouldBeNil)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		s := NewMemoryStore()
		defer s.Close()
		storeContract(context.Background(), s)

		Convey("When the caller mutates a value after Set", func() {
			buf := []byte("abc")
			So(s.Set(context.Background(), "k", buf), ShouldBeNil)
			buf[0] = 'z'

			Convey("Then the stored copy is unaffected", func() {
				got, _ := s.Get(context.Background(), "k")
				So(string(got), ShouldEqual, "abc")
			})
		})
	})
}

func TestFileStore(t *testing.T) {
	Convey("Given a file store in a temp dir", t, func() {
		dir := filepath.Join(t.TempDir(), "nested")
		s, err := NewFileStore(dir)
		So(err, ShouldBeNil)
		defer s.Close()
		storeContract(context.Background(), s)

		Convey("When a value is written", func() {
			So(s.Set(context.Background(), "upg-calculator:v1", []byte("{}")), ShouldBeNil)

			Convey("Then one sanitized file holds it and no temp files remain", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Name(), ShouldEqual, "upg-calculator_v1.json")
				So(s.Path("upg-calculator:v1"), ShouldEqual, filepath.Join(dir, "upg-calculator_v1.json"))
			})
		})
	})

	Convey("Given keys with path characters", t, func() {
		So(fileName("../../etc/passwd"), ShouldEqual, "_.._.._etc_passwd.json")
		So(fileName(""), ShouldEqual, "_.json")
		So(fileName("a b"), ShouldEqual, "a_b.json")
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a SQLite store on a temp file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "upg.db")
		s, err := Open(ctx, DriverSQLite, WithPath(path))
		So(err, ShouldBeNil)
		defer s.Close()
		storeContract(ctx, s)

		Convey("When the database is reopened", func() {
			So(s.Set(ctx, "k", []byte("persisted")), ShouldBeNil)
			again, err := Open(ctx, DriverSQLite, WithPath(path))
			So(err, ShouldBeNil)
			defer again.Close()

			Convey("Then the value survived", func() {
				got, err := again.Get(ctx, "k")
				So(err, ShouldBeNil)
				So(string(got), ShouldEqual, "persisted")
			})
		})
	})
}

func TestSQLiteStoreCreatesDirectory(t *testing.T) {
	Convey("Given a SQLite path whose directory does not exist yet", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "data", "upg.db")
		s, err := Open(ctx, DriverSQLite, WithPath(path))
		So(err, ShouldBeNil)
		defer s.Close()

		So(s.Set(ctx, "k", []byte("v")), ShouldBeNil)
		_, err = os.Stat(path)
		So(err, ShouldBeNil)
	})
}

func TestOpen(t *testing.T) {
	Convey("Given driver names", t, func() {
		d, err := ParseDriver(" SQLite ")
		So(err, ShouldBeNil)
		So(d, ShouldEqual, DriverSQLite)
		_, err = ParseDriver("redis")
		So(errors.Is(err, ErrUnsupportedDriver), ShouldBeTrue)

		s, err := Open(context.Background(), DriverMemory)
		So(err, ShouldBeNil)
		So(s, ShouldHaveSameTypeAs, &MemoryStore{})

		fs, err := Open(context.Background(), DriverFile, WithPath(t.TempDir()))
		So(err, ShouldBeNil)
		So(fs, ShouldHaveSameTypeAs, &FileStore{})

		_, err = Open(context.Background(), Driver("redis"))
		So(errors.Is(err, ErrUnsupportedDriver), ShouldBeTrue)
	})

	Convey("Given SQL placeholders", t, func() {
		So(rebind(DriverPostgres, "SELECT ? , ?"), ShouldEqual, "SELECT $1 , $2")
		So(rebind(DriverSQLite, "SELECT ?"), ShouldEqual, "SELECT ?")
	})

	Convey("Given DSN options", t, func() {
		c := openConfig{}
		WithPath("/tmp/x.db")(&c)
		So(c.dsnFor(DriverSQLite), ShouldEqual, "file:/tmp/x.db?_pragma=busy_timeout(5000)")
		So(c.dsnFor(DriverPostgres), ShouldEqual, "")
		WithDSN("postgres://h/db")(&c)
		So(c.dsnFor(DriverPostgres), ShouldEqual, "postgres://h/db")
	})
}
