package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ljmet/condorsub/compute"
	"github.com/ljmet/condorsub/compute/noop"
	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/config/testconfig"
	"github.com/ljmet/condorsub/database"
	"github.com/ljmet/condorsub/jobtpl"
	"github.com/ljmet/condorsub/logger"
	"github.com/ljmet/condorsub/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var interleaved = []string{
	"a.root",
	"# QCD_HT2000ToInf",
	"b.root",
	"",
	"c.root",
}

// memLedger keeps records in memory.
type memLedger struct {
	mtx     sync.Mutex
	records map[string]database.Record
}

func (l *memLedger) PutRecord(ctx context.Context, r *database.Record) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.records == nil {
		l.records = map[string]database.Record{}
	}
	l.records[artifactName(r.Dataset, r.Index, "")] = *r
	return nil
}

func (l *memLedger) get(dataset string, index int) database.Record {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.records[artifactName(dataset, index, "")]
}

// failingSubmitter fails the jobs listed in fail.
type failingSubmitter struct {
	mtx   sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *failingSubmitter) Submit(ctx context.Context, dir, descriptor string) (*compute.Result, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.calls = append(f.calls, descriptor)
	if f.fail[descriptor] {
		return &compute.Result{Backend: "fake", ExitCode: 1}, compute.ErrSubmitFailed
	}
	return &compute.Result{Backend: "fake", JobID: "100"}, nil
}

func newMaterializer(t *testing.T, conf config.Config, sub compute.Submitter, rec database.Recorder) *Materializer {
	t.Helper()
	log := logger.New("test")
	log.Discard()
	m, err := NewMaterializer(conf, sub, rec, log, "run1")
	require.NoError(t, err)
	return m
}

func dataset(t *testing.T, conf config.Config, dir, label string, lines ...string) config.Dataset {
	t.Helper()
	testconfig.WriteManifest(t, filepath.Join(dir, "manifests"), label+".txt", lines...)
	conf.Datasets = []config.Dataset{{Label: label, Manifest: label + ".txt"}}
	return conf.ResolvedDatasets()[0]
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

func TestMaterializeOneInputPerJob(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	d := dataset(t, conf, dir, "QCD", interleaved...)
	sub := noop.NewBackend()
	m := newMaterializer(t, conf, sub, nil)

	report, err := m.Materialize(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	require.Len(t, report.Jobs, 3)
	assert.Equal(t, 3, report.Submitted)

	for i, ref := range []string{"a.root", "b.root", "c.root"} {
		jr := report.Jobs[i]
		assert.Equal(t, i+1, jr.Chunk.Index)
		assert.Equal(t, []manifest.Reference{manifest.Reference(ref)}, jr.Chunk.Inputs)
		require.Len(t, jr.Artifacts, 3)
	}

	py := readFile(t, filepath.Join(d.OutputDir, "QCD_2.py"))
	assert.Equal(t, "process.inputs = cms.untracked.vstring(\n"+
		"                 'root://cmsxrootd.fnal.gov/b.root',\n"+
		")\n"+
		"process.output = '"+d.OutputDir+"/QCD_2.root'\n"+
		"process.maxEvents = -1\n", py)

	assert.Equal(t, []noop.Submission{
		{Dir: d.OutputDir, Descriptor: "QCD_1.condor"},
		{Dir: d.OutputDir, Descriptor: "QCD_2.condor"},
		{Dir: d.OutputDir, Descriptor: "QCD_3.condor"},
	}, sub.Submitted())
}

func TestMaterializeTwoInputsPerJob(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	conf.ChunkSize = 2
	d := dataset(t, conf, dir, "QCD", interleaved...)
	sub := noop.NewBackend()
	m := newMaterializer(t, conf, sub, nil)

	report, err := m.Materialize(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, report.Jobs, 2)
	assert.Equal(t, []manifest.Reference{"a.root", "b.root"}, report.Jobs[0].Chunk.Inputs)
	assert.Equal(t, []manifest.Reference{"c.root"}, report.Jobs[1].Chunk.Inputs)
	assert.Len(t, sub.Submitted(), 2)

	py := readFile(t, filepath.Join(d.OutputDir, "QCD_1.py"))
	assert.Contains(t, py, "'root://cmsxrootd.fnal.gov/a.root',\n                 'root://cmsxrootd.fnal.gov/b.root',\n)")

	_, err = os.Stat(filepath.Join(d.OutputDir, "QCD_3.py"))
	assert.True(t, os.IsNotExist(err))
}

func TestMaterializeNoInputs(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	d := dataset(t, conf, dir, "Empty", "nothing to see", "# comment")
	sub := noop.NewBackend()
	m := newMaterializer(t, conf, sub, nil)

	report, err := m.Materialize(context.Background(), d)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Empty(t, report.Jobs)
	assert.Empty(t, sub.Submitted())

	_, err = os.Stat(d.OutputDir)
	assert.True(t, os.IsNotExist(err), "output directory must not be created")
}

func TestMaterializeExistingOutputDir(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	d := dataset(t, conf, dir, "QCD", "a.root")
	require.NoError(t, os.MkdirAll(d.OutputDir, 0755))
	m := newMaterializer(t, conf, noop.NewBackend(), nil)

	_, err := m.Materialize(context.Background(), d)
	require.NoError(t, err)
	_, err = m.Materialize(context.Background(), d)
	require.NoError(t, err)
}

func TestMaterializeWrapperExecutable(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	d := dataset(t, conf, dir, "QCD", "a.root")
	m := newMaterializer(t, conf, noop.NewBackend(), nil)

	_, err := m.Materialize(context.Background(), d)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(d.OutputDir, "QCD_1.csh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100, "wrapper must be user executable")

	info, err = os.Stat(filepath.Join(d.OutputDir, "QCD_1.condor"))
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&0100)
}

func TestMaterializeNoResidualPlaceholders(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	d := dataset(t, conf, dir, "QCD", "/store/mc/a.root", "/store/mc/b.root")
	m := newMaterializer(t, conf, noop.NewBackend(), nil)

	report, err := m.Materialize(context.Background(), d)
	require.NoError(t, err)
	for _, jr := range report.Jobs {
		for _, a := range jr.Artifacts {
			text := readFile(t, a.Path)
			for _, p := range append(jobtpl.Builtins, "EVENTSTOPROCESS") {
				assert.NotContains(t, text, p, a.Path)
			}
		}
	}
}

func TestMaterializeVariablesDontOverrideBuiltins(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	conf.Variables[jobtpl.Prefix] = "override"
	d := dataset(t, conf, dir, "QCD", "a.root")
	m := newMaterializer(t, conf, noop.NewBackend(), nil)

	_, err := m.Materialize(context.Background(), d)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, filepath.Join(d.OutputDir, "QCD_1.condor")), "Executable = QCD_1.csh")
}

func TestMaterializeSubmitFailureContinues(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	d := dataset(t, conf, dir, "QCD", interleaved...)
	sub := &failingSubmitter{fail: map[string]bool{"QCD_2.condor": true}}
	ledger := &memLedger{}
	m := newMaterializer(t, conf, sub, ledger)

	report, err := m.Materialize(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"QCD_1.condor", "QCD_2.condor", "QCD_3.condor"}, sub.calls)
	assert.Equal(t, 2, report.Submitted)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, errors.Is(report.Jobs[1].Err, compute.ErrSubmitFailed))
	assert.Equal(t, 1, report.Jobs[1].Result.ExitCode)

	assert.Equal(t, database.Failed, ledger.get("QCD", 2).Status)
	rec := ledger.get("QCD", 3)
	assert.Equal(t, database.Submitted, rec.Status)
	assert.Equal(t, "100", rec.JobID)
	assert.Equal(t, "run1", rec.RunID)
	assert.Equal(t, []string{"c.root"}, rec.Inputs)
}

func TestMaterializeFailFast(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	conf.Submit.FailFast = true
	d := dataset(t, conf, dir, "QCD", interleaved...)
	sub := &failingSubmitter{fail: map[string]bool{"QCD_2.condor": true}}
	m := newMaterializer(t, conf, sub, nil)

	report, err := m.Materialize(context.Background(), d)
	assert.True(t, errors.Is(err, compute.ErrSubmitFailed))
	assert.Equal(t, []string{"QCD_1.condor", "QCD_2.condor"}, sub.calls)
	assert.Len(t, report.Jobs, 2)

	_, err = os.Stat(filepath.Join(d.OutputDir, "QCD_3.py"))
	assert.True(t, os.IsNotExist(err))
}

func TestMaterializeDryRun(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	conf.Submit.DryRun = true
	d := dataset(t, conf, dir, "QCD", "a.root", "b.root")
	sub := noop.NewBackend()
	ledger := &memLedger{}
	m := newMaterializer(t, conf, sub, ledger)

	report, err := m.Materialize(context.Background(), d)
	require.NoError(t, err)
	assert.Len(t, report.Jobs, 2)
	assert.Empty(t, sub.Submitted())
	assert.Equal(t, database.DryRun, ledger.get("QCD", 1).Status)
	assert.FileExists(t, filepath.Join(d.OutputDir, "QCD_2.condor"))
}

func TestMaterializeWriteFailure(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	d := dataset(t, conf, dir, "QCD", interleaved...)
	// a directory where the second analysis file should go
	require.NoError(t, os.MkdirAll(filepath.Join(d.OutputDir, "QCD_2.py"), 0755))
	sub := noop.NewBackend()
	m := newMaterializer(t, conf, sub, nil)

	report, err := m.Materialize(context.Background(), d)
	assert.True(t, errors.Is(err, ErrOutputWrite))
	assert.Len(t, report.Jobs, 1)
	assert.Len(t, sub.Submitted(), 1)
	_, err = os.Stat(filepath.Join(d.OutputDir, "QCD_3.py"))
	assert.True(t, os.IsNotExist(err))
}

func TestMaterializeOutputDirIsFile(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	d := dataset(t, conf, dir, "QCD", "a.root")
	testconfig.WriteFile(t, filepath.Dir(d.OutputDir), filepath.Base(d.OutputDir), "not a dir")
	m := newMaterializer(t, conf, noop.NewBackend(), nil)

	_, err := m.Materialize(context.Background(), d)
	assert.True(t, errors.Is(err, ErrOutputWrite))
}

func TestMaterializeManifestNotFound(t *testing.T) {
	conf, _ := testconfig.Workspace(t)
	d := config.Dataset{Label: "QCD", Manifest: filepath.Join(t.TempDir(), "missing.txt"), OutputDir: t.TempDir()}
	m := newMaterializer(t, conf, noop.NewBackend(), nil)

	_, err := m.Materialize(context.Background(), d)
	assert.True(t, errors.Is(err, manifest.ErrManifestNotFound))
}

func TestMaterializeCanceled(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	d := dataset(t, conf, dir, "QCD", interleaved...)
	sub := noop.NewBackend()
	m := newMaterializer(t, conf, sub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := m.Materialize(ctx, d)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, report.Jobs)
	assert.Empty(t, sub.Submitted())
}

func TestNewMaterializerMissingVariable(t *testing.T) {
	conf, dir := testconfig.Workspace(t)
	conf.Templates[0].Placeholders = []string{jobtpl.InFiles, "BTAGUNCERTUP"}
	_, err := NewMaterializer(conf, noop.NewBackend(), nil, nil, "run1")
	assert.True(t, errors.Is(err, jobtpl.ErrMissingVariable))

	conf.Templates[0].Path = filepath.Join(dir, "missing.templ")
	_, err = NewMaterializer(conf, noop.NewBackend(), nil, nil, "run1")
	assert.True(t, errors.Is(err, jobtpl.ErrTemplateNotFound))
}

func TestNewMaterializerWarnsUnusedPlaceholder(t *testing.T) {
	conf, _ := testconfig.Workspace(t)
	conf.Variables["FLAGTAG"] = "TriggerResults::PAT"
	conf.Templates[1].Placeholders = []string{jobtpl.Prefix, jobtpl.JobID, "FLAGTAG"}

	var b strings.Builder
	log := logger.New("test")
	c := logger.DefaultConfig()
	c.Formatter = "json"
	log.Configure(c)
	log.SetOutput(&b)

	_, err := NewMaterializer(conf, noop.NewBackend(), nil, log, "run1")
	require.NoError(t, err)
	assert.Contains(t, b.String(), `"placeholder":"FLAGTAG"`)
}
