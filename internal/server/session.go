package server

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/config"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
	"github.com/open-edge-platform/geti-sub021/internal/media"
	"github.com/open-edge-platform/geti-sub021/internal/merge"
	"github.com/open-edge-platform/geti-sub021/internal/scene"
	"github.com/open-edge-platform/geti-sub021/internal/taskchain"
)

var (
	// ErrNoProject is returned by tools that need a loaded project.
	ErrNoProject = errors.New("no project loaded, call project_load first")

	// ErrNoMedia is returned by tools that need a loaded image.
	ErrNoMedia = errors.New("no media loaded, call media_load first")

	// ErrTooManyAnnotations is returned when a call would exceed the
	// configured annotation limit.
	ErrTooManyAnnotations = errors.New("too many annotations")
)

// session is the annotation state of one image under one project.
type session struct {
	cfg    config.Config
	logger *zap.Logger

	project *config.Project
	chain   taskchain.Chain
	views   *taskchain.ViewCache
	base    *scene.Base
	scene   *scene.TaskChain

	media *media.Info
}

func newSession(cfg config.Config, logger *zap.Logger) *session {
	return &session{cfg: cfg, logger: logger}
}

// loadProject installs the task chain of p and starts an empty scene. The
// current image, if any, is kept.
func (s *session) loadProject(p *config.Project) error {
	chain := taskchain.New(p.AnnotationTasks(), s.cfg.Epsilon)
	views, err := taskchain.NewViewCache(chain, s.cfg.ViewCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create view cache: %w", err)
	}

	s.project = p
	s.chain = chain
	s.views = views
	s.reset(nil)
	return nil
}

// reset replaces the scene with one holding annotations and no history.
// The selected task survives.
func (s *session) reset(annotations []annotation.Annotation) {
	var selected *annotation.Task
	if s.scene != nil {
		selected = s.scene.SelectedTask()
	}

	s.base = scene.NewBase(annotations, scene.WithHistoryLimit(s.cfg.HistoryLimit))
	s.scene = scene.NewTaskChain(s.base, s.chain, s.roi(),
		scene.WithLogger(s.logger.Named("scene")),
		scene.WithSelectedTask(selected),
	)
}

// setMedia switches to a new image. Annotations belong to an image, so the
// scene starts empty and the cached views are dropped.
func (s *session) setMedia(info *media.Info) {
	s.media = info
	if s.views != nil {
		s.views.Purge()
	}
	if s.scene != nil {
		s.reset(nil)
		s.scene.SetROI(info.ROI())
	}
}

func (s *session) roi() geometry.Rect {
	if s.scene != nil {
		return s.scene.ROI()
	}
	if s.media != nil {
		return s.media.ROI()
	}
	return geometry.Rect{}
}

func (s *session) ready() error {
	if s.scene == nil {
		return ErrNoProject
	}
	return nil
}

func (s *session) checkLimit(adding int) error {
	if n := len(s.base.Annotations()) + adding; n > s.cfg.MaxAnnotations {
		return fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyAnnotations, n, s.cfg.MaxAnnotations)
	}
	return nil
}

// anomalySlack returns 1 when adding shapes with labels would also insert a
// global anomalous annotation, 0 otherwise.
func (s *session) anomalySlack(shapes []geometry.Shape, labels []annotation.Label) int {
	withGlobal := s.chain.PossiblyAddGlobalAnomalousShape(shapes, labels, s.scene.Annotations(), s.scene.ROI())
	return len(withGlobal) - len(shapes)
}

// annotationsSlack is anomalySlack for whole annotations. Only anomaly
// tasks insert a global annotation alongside added annotations.
func (s *session) annotationsSlack(annotations []annotation.Annotation) int {
	selected := s.scene.SelectedTask()
	if selected == nil || !selected.Domain.IsAnomaly() {
		return 0
	}
	shapes := make([]geometry.Shape, 0, len(annotations))
	var labels []annotation.Label
	for _, a := range annotations {
		shapes = append(shapes, a.Shape)
		for _, l := range a.Labels {
			labels = append(labels, l.Label)
		}
	}
	return s.anomalySlack(shapes, labels)
}

func (s *session) view() taskchain.View {
	return s.views.View(s.scene.Annotations(), s.scene.SelectedTask(), s.scene.ROI())
}

func (s *session) merger() merge.Merger {
	return merge.Merger{Chain: s.chain, ROI: s.scene.ROI(), SelectedTask: s.scene.SelectedTask()}
}

func (s *session) findTask(id string) (*annotation.Task, bool) {
	i := s.chain.TaskIndex(id)
	if i < 0 {
		return nil, false
	}
	task := s.chain.Tasks[i]
	return &task, true
}
