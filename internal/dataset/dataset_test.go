package dataset

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bd-geo/internal/config"
	"bd-geo/internal/geo"
	"bd-geo/internal/logger"
	"bd-geo/internal/metrics"
	"bd-geo/internal/migrate"
)

func TestDir_LoadsAllFiles(t *testing.T) {
	ds, err := Dir(filepath.Join("testdata", "basic")).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []geo.Division{
		{ID: "1", Name: "Alpha", BnName: "আলফা", URL: "alpha.example"},
		{ID: "2", Name: "Beta", BnName: "বিটা"},
	}, ds.Divisions)
	require.Len(t, ds.Districts, 2)
	assert.Equal(t, "23.1", ds.Districts[0].Lat)
	assert.Equal(t, "1", ds.Districts[0].DivisionID)
	assert.Equal(t, []geo.Union{{ID: "1000", UpazilaID: "100", Name: "Thousand", BnName: "হাজার"}}, ds.Unions)
	assert.Equal(t, []geo.DistrictArea{{DistrictID: "10", Areas: []string{"Area A", "Area B"}}}, ds.DistrictAreas)
}

func TestDir_MissingFile(t *testing.T) {
	fsys := fstest.MapFS{
		DivisionsFile: {Data: []byte(`[]`)},
		DistrictsFile: {Data: []byte(`[]`)},
	}

	_, err := FS("partial", fsys).Load(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFile))
	assert.Contains(t, err.Error(), UpazilasFile)
}

func TestDir_BadJSON(t *testing.T) {
	_, err := Dir(filepath.Join("testdata", "badjson")).Load(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingFile))
	assert.Contains(t, err.Error(), "decoding "+UnionsFile)
}

func TestDir_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dir(filepath.Join("testdata", "basic")).Load(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedded(t *testing.T) {
	ds, err := Embedded().Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Divisions, 8)
	assert.Len(t, ds.Districts, 64)
	assert.Equal(t, "Chattagram", ds.Divisions[0].Name)

	lk := geo.NewLookup(ds)
	assert.Len(t, lk.DistrictsByDivision("1"), 11)
	assert.Len(t, lk.DistrictsByDivision("6"), 13)
	assert.Empty(t, lk.AreasByDistrict("47"))

	total := 0
	for _, d := range lk.Divisions() {
		total += len(lk.DistrictsByDivision(d.ID))
	}
	assert.Equal(t, 64, total, "every district belongs to a known division")
}

type failingSource struct{ err error }

func (f failingSource) Name() string { return "failing" }

func (f failingSource) Load(context.Context) (*geo.Dataset, error) { return nil, f.err }

func TestChain(t *testing.T) {
	boom := errors.New("boom")

	t.Run("falls back to next source", func(t *testing.T) {
		ds, err := Chain(failingSource{boom}, nil, Dir(filepath.Join("testdata", "basic"))).Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, ds.Divisions, 2)
	})

	t.Run("joins all errors", func(t *testing.T) {
		other := errors.New("other")
		_, err := Chain(failingSource{boom}, failingSource{other}).Load(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, other)
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := Chain(nil).Load(context.Background())
		assert.ErrorIs(t, err, ErrUnknownSource)
	})

	t.Run("name lists members", func(t *testing.T) {
		assert.Equal(t, "chain(failing,embedded)", Chain(failingSource{boom}, Embedded()).Name())
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantName string
	}{
		{"default", "", "embedded"},
		{"embedded", "embedded", "embedded"},
		{"dir", "dir", "dir:testdata/basic"},
		{"redis", "redis", "redis:bdgeo"},
		{"explicit fallback list", "dir, embedded", "chain(dir:testdata/basic,embedded)"},
		{"case insensitive", "EMBEDDED", "embedded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Source = tt.source
			cfg.DataDir = "testdata/basic"

			src, closeFn, err := New(cfg)
			require.NoError(t, err)
			defer closeFn()
			assert.Equal(t, tt.wantName, src.Name())
		})
	}

	t.Run("unknown source", func(t *testing.T) {
		cfg := config.Default()
		cfg.Source = "ftp"
		_, _, err := New(cfg)
		assert.ErrorIs(t, err, ErrUnknownSource)
	})

	t.Run("unknown member of list", func(t *testing.T) {
		cfg := config.Default()
		cfg.Source = "dir,ftp"
		_, _, err := New(cfg)
		assert.ErrorIs(t, err, ErrUnknownSource)
		assert.Contains(t, err.Error(), `"ftp"`)
	})

	t.Run("redis without host", func(t *testing.T) {
		cfg := config.Default()
		cfg.Source = "redis"
		cfg.Redis.Host = ""
		_, _, err := New(cfg)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestLoad_RecordsMetrics(t *testing.T) {
	okBefore := testutil.ToFloat64(metrics.DatasetLoadsTotal.WithLabelValues("dir:testdata/basic", "ok"))
	failBefore := testutil.ToFloat64(metrics.DatasetLoadsTotal.WithLabelValues("failing", "fail"))

	ds, err := Load(context.Background(), Dir("testdata/basic"))
	require.NoError(t, err)
	assert.Len(t, ds.Upazilas, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DatasetRecords.WithLabelValues("unions")))

	_, err = Load(context.Background(), failingSource{errors.New("boom")})
	require.Error(t, err)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.DatasetLoadsTotal.WithLabelValues("dir:testdata/basic", "ok")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(metrics.DatasetLoadsTotal.WithLabelValues("failing", "fail")))
}

func TestOpen_DirSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source = "dir"
	cfg.DataDir = filepath.Join("testdata", "basic")

	lk, ds, err := Open(context.Background(), cfg)
	require.NoError(t, err)

	assert.Len(t, ds.Divisions, 2)
	assert.Equal(t, []string{"Area A", "Area B"}, lk.AreasByDistrict("10"))
	assert.Len(t, lk.UnionsByUpazila("100"), 1)
}

func TestOpen_DirErrorsPropagate(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		cfg := config.Default()
		cfg.Source = "dir"
		cfg.DataDir = filepath.Join(t.TempDir(), "typo")

		lk, ds, err := Open(context.Background(), cfg)

		assert.ErrorIs(t, err, ErrMissingFile)
		assert.Nil(t, lk)
		assert.Nil(t, ds)
	})

	t.Run("bad json", func(t *testing.T) {
		cfg := config.Default()
		cfg.Source = "dir"
		cfg.DataDir = filepath.Join("testdata", "badjson")

		_, _, err := Open(context.Background(), cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding unions.json")
	})
}

func TestOpen_ExplicitFallbackList(t *testing.T) {
	cfg := config.Default()
	cfg.Source = "dir,embedded"
	cfg.DataDir = filepath.Join(t.TempDir(), "typo")

	lk, _, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, lk.Divisions(), 8)
}

func TestLoad_LogsCountsAndEmptyCollections(t *testing.T) {
	var buf bytes.Buffer
	logger.SetupWriter(&buf, "info", "")
	t.Cleanup(func() { logger.SetupWriter(os.Stderr, "info", "") })

	_, err := Load(context.Background(), Embedded())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=dataset_collection_empty source=embedded collection=upazilas")
	assert.Contains(t, out, "collection=unions")
	assert.Contains(t, out, "collection=district_area")
	assert.NotContains(t, out, "collection=districts\n")
	assert.Contains(t, out, "district_area=0 districts=64 divisions=8 unions=0 upazilas=0")
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bdgeo.db")
	rw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, migrate.EnsureSchema(rw))
	_, err = rw.Exec(`INSERT INTO bdgeo_divisions(seq, id, name) VALUES (1, '1', 'Alpha')`)
	require.NoError(t, err)
	_, err = rw.Exec(`INSERT INTO bdgeo_districts(seq, id, division_id, name) VALUES (1, '10', '1', 'Ten')`)
	require.NoError(t, err)
	_, err = rw.Exec(`INSERT INTO bdgeo_district_areas(seq, district_id, areas) VALUES (1, '10', '["Area A"]')`)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	cfg := config.Default()
	cfg.Source = "sqlite"
	cfg.SQLitePath = path

	lk, ds, err := Open(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, ds.Counts()["districts"])
	assert.Equal(t, "Ten", lk.DistrictsByDivision("1")[0].Name)
	assert.Equal(t, []string{"Area A"}, lk.AreasByDistrict("10"))
	assert.Empty(t, lk.UpazilasByDistrict("10"))
}
