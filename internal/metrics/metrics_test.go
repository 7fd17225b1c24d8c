package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSearch(t *testing.T) {
	beforeCache := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("cache"))
	beforeMiss := testutil.ToFloat64(CacheTotal.WithLabelValues("miss"))

	RecordSearch(true, 0)
	RecordSearch(false, 15*time.Millisecond)

	assert.Equal(t, beforeCache+1, testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("cache")))
	assert.Equal(t, beforeMiss+1, testutil.ToFloat64(CacheTotal.WithLabelValues("miss")))
}

func TestRecordCorpusReload(t *testing.T) {
	RecordCorpusReload(42, nil)
	assert.Equal(t, float64(42), testutil.ToFloat64(CorpusRecipes))

	before := testutil.ToFloat64(CorpusReloadsTotal.WithLabelValues("error"))
	RecordCorpusReload(0, errors.New("store down"))
	assert.Equal(t, float64(0), testutil.ToFloat64(CorpusRecipes))
	assert.Equal(t, before+1, testutil.ToFloat64(CorpusReloadsTotal.WithLabelValues("error")))
}

func TestRecordHTTPRequestUnmatched(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	RecordHTTPRequest("GET", "", 404)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
