package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/ods14/internal/config"
	"github.com/BartekS5/ods14/internal/extract"
	"github.com/BartekS5/ods14/internal/report"
)

func TestParseRange(t *testing.T) {
	rng, err := parseRange("", "")
	require.NoError(t, err)
	assert.Nil(t, rng.Start)
	assert.Nil(t, rng.End)

	rng, err = parseRange("2015-01-01", "2016-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), *rng.Start)
	assert.Equal(t, time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), *rng.End)

	_, err = parseRange("01/01/2015", "")
	assert.ErrorContains(t, err, "--start")

	_, err = parseRange("2016-01-01", "2015-01-01")
	assert.ErrorContains(t, err, "empty date range")
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"etl", "schema", "report", "export"})

	etlCmd, _, err := root.Find([]string{"etl"})
	require.NoError(t, err)
	require.NoError(t, etlCmd.ParseFlags([]string{"--dry-run", "--parquet-dir", "out"}))
	dry, _ := etlCmd.Flags().GetBool("dry-run")
	assert.True(t, dry)
}

func TestReportUnknownNameFailsBeforeConnecting(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"report", "--name", "no_such_report"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	assert.ErrorIs(t, err, report.ErrUnknownReport)
}

func TestListReports(t *testing.T) {
	var buf bytes.Buffer
	listReports(&buf)
	for _, r := range report.Catalog {
		assert.Contains(t, buf.String(), r.Name)
	}
}

func TestS3OptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		S3Region:          "eu-central-1",
		S3Endpoint:        "http://minio:9000",
		S3PathStyle:       true,
		S3AccessKeyID:     "AKIDEXAMPLE",
		S3SecretAccessKey: "secret",
	}
	assert.Equal(t, extract.S3Options{
		Region:          "eu-central-1",
		Endpoint:        "http://minio:9000",
		PathStyle:       true,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	}, s3Options(cfg))
}
