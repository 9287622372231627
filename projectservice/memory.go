package projectservice

import (
	"context"
	"sort"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// MemoryService keeps published metadata in memory.
// It is safe for concurrent use.
type MemoryService struct {
	mu    sync.RWMutex
	store map[string]map[string]entry
}

type entry struct {
	version model.ArtifactVersion
	info    ModuleInfo
}

// NewMemoryService returns an empty MemoryService.
func NewMemoryService() *MemoryService {
	return &MemoryService{store: make(map[string]map[string]entry)}
}

// Publish implements Publisher. Publishing a version again replaces its metadata.
func (s *MemoryService) Publish(ctx context.Context, mi model.ModuleIteration) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeCanceled, "publish canceled")
	}
	if mi.Project() == nil {
		return errors.New(errors.CodeInvalidInput, "module iteration is not set")
	}
	s.put(mi.ArtifactVersion(), InfoFor(mi))
	return nil
}

// Put stores info directly, for records not derived from a module
// iteration such as snapshots.
func (s *MemoryService) Put(info ModuleInfo) error {
	v, err := model.ParseArtifactVersion(trimSnapshot(info.Version))
	if err != nil {
		return err
	}
	if info.Project == "" {
		return errors.New(errors.CodeInvalidInput, "project is required")
	}
	s.put(v, info)
	return nil
}

func (s *MemoryService) put(v model.ArtifactVersion, info ModuleInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions, ok := s.store[info.Project]
	if !ok {
		versions = make(map[string]entry)
		s.store[info.Project] = versions
	}
	versions[info.Version] = entry{version: v, info: info}
}

// ModuleInfo implements Reader.
func (s *MemoryService) ModuleInfo(ctx context.Context, project *model.Project, version model.ArtifactVersion) (ModuleInfo, error) {
	if err := ctx.Err(); err != nil {
		return ModuleInfo{}, errors.Wrap(err, errors.CodeCanceled, "lookup canceled")
	}
	if project == nil {
		return ModuleInfo{}, errors.New(errors.CodeInvalidInput, "project cannot be nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.store[project.Key()][version.String()]
	if !ok {
		return ModuleInfo{}, &errors.ForgeError{
			Code:    errors.CodeNotFound,
			Message: "no metadata for " + project.Key() + " " + version.String(),
			Context: map[string]interface{}{"project": project.Key(), "version": version.String()},
		}
	}
	return e.info, nil
}

// Versions returns the published metadata of project, oldest version first.
func (s *MemoryService) Versions(project *model.Project) []ModuleInfo {
	if project == nil {
		return nil
	}
	s.mu.RLock()
	entries := make([]entry, 0, len(s.store[project.Key()]))
	for _, e := range s.store[project.Key()] {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].version.Compare(entries[j].version); c != 0 {
			return c < 0
		}
		return entries[i].info.Status != StatusSnapshot && entries[j].info.Status == StatusSnapshot
	})
	out := make([]ModuleInfo, len(entries))
	for i, e := range entries {
		out[i] = e.info
	}
	return out
}

func trimSnapshot(v string) string {
	const suffix = "-SNAPSHOT"
	if len(v) > len(suffix) && v[len(v)-len(suffix):] == suffix {
		return v[:len(v)-len(suffix)]
	}
	return v
}
