package optimizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/format"
	"github.com/backmassage/pixmaster/internal/naming"
	"github.com/backmassage/pixmaster/internal/policy"
	"github.com/backmassage/pixmaster/internal/selector"
	"github.com/backmassage/pixmaster/internal/tools"
	"github.com/backmassage/pixmaster/internal/visual"
	"github.com/backmassage/pixmaster/internal/workspace"
)

// convertLabel names the GIF→PNG conversion when it competes as a
// candidate on the PNG path.
const convertLabel tools.ID = "gif2png"

// encoding is a file chosen for promotion into the final directory.
type encoding struct {
	cand        selector.Candidate
	typeChanged bool
}

// process runs one job: analyze, stage, race, promote. It never returns
// an error; every failure is logged and only shrinks the result set.
func (s *Service[T]) process(ctx context.Context, idx, total int, src string, mode config.ConversionMode, webp bool) []Result[T] {
	job, ok := s.newJob(idx, src, mode, webp)
	if !ok {
		return nil
	}
	a := job.Analysis
	s.log.Info("[%d/%d] %s (%s, %d bytes)", idx+1, total, filepath.Base(job.Canonical), a.Format, job.Size)

	decision := policy.Decide(a.Format, a.Animated, a.Transparency, mode, webp)
	s.log.Debug("  %s: %s", filepath.Base(job.Canonical), decision.Reason())

	jd, err := s.ws.NewJob()
	if err != nil {
		s.log.Error("%s: %v", job.Canonical, err)
		return nil
	}
	job.ID = jd.ID
	defer func() {
		if err := jd.Release(); err != nil {
			s.log.Warn("Cannot remove job directory %s: %v", jd.Path, err)
		}
	}()

	working, err := jd.Stage(job.Canonical)
	if err != nil {
		s.log.Error("%s: cannot stage working copy: %v", job.Canonical, err)
		return nil
	}

	native, png := s.racePrimary(ctx, job, jd, working, decision)
	primary := choosePrimary(job.Size, native, png, decision)

	var webpCand *selector.Candidate
	if decision.ProduceWebP() && ctx.Err() == nil {
		webpCand = s.encodeWebP(ctx, job, webpInput(job, working, native, primary, decision), decision)
	}

	var results []Result[T]
	if primary != nil {
		ext := ""
		if primary.typeChanged {
			ext = format.FormatPNG.Extension()
		}
		if r, ok := s.promote(job, primary.cand, ext, primary.typeChanged, false); ok {
			results = append(results, r)
		}
	} else {
		s.log.Info("  %s: no smaller encoding found", filepath.Base(job.Canonical))
	}
	if webpCand != nil {
		if r, ok := s.promote(job, *webpCand, naming.WebPExt, true, true); ok {
			results = append(results, r)
		}
	}
	return results
}

func (s *Service[T]) newJob(idx int, src string, mode config.ConversionMode, webp bool) (*Job, bool) {
	canonical, err := workspace.Canonical(src)
	if err != nil {
		s.log.Error("Cannot resolve %s: %v", src, err)
		return nil, false
	}
	fi, err := os.Stat(canonical)
	if err != nil {
		s.log.Error("Cannot read %s: %v", src, err)
		return nil, false
	}
	if !fi.Mode().IsRegular() {
		s.log.Warn("Skip (not a regular file): %s", src)
		return nil, false
	}
	a, err := format.Analyze(canonical)
	if err != nil {
		if errors.Is(err, format.ErrUnsupportedFormat) {
			s.log.Warn("Skip (unsupported format): %s", src)
		} else {
			s.log.Error("Cannot analyze %s: %v", src, err)
		}
		return nil, false
	}
	return &Job{
		Index:     idx,
		Source:    src,
		Canonical: canonical,
		Size:      fi.Size(),
		Analysis:  a,
		Mode:      mode,
		WebP:      webp,
	}, true
}

// racePrimary races the tools of the source's own format and, when the
// policy allows retargeting, the PNG tools on a converted copy. The two
// paths run concurrently; png is the zero Outcome when not attempted.
func (s *Service[T]) racePrimary(ctx context.Context, job *Job, jd *workspace.JobDir, working string, d policy.Decision) (native, png selector.Outcome) {
	var g errgroup.Group
	g.Go(func() error {
		native = selector.Race(ctx, s.runner, tools.ForFormat(job.Analysis.Format), working, job.Canonical)
		s.logFailures(job, native)
		return nil
	})
	if d.Retarget {
		g.Go(func() error {
			png = s.racePNG(ctx, job, jd, working)
			return nil
		})
	}
	_ = g.Wait()
	return native, png
}

func (s *Service[T]) racePNG(ctx context.Context, job *Job, jd *workspace.JobDir, working string) selector.Outcome {
	dir, err := jd.Dir("png")
	if err != nil {
		s.log.Warn("  %s: %v", filepath.Base(job.Canonical), err)
		return selector.Outcome{}
	}
	stem := strings.TrimSuffix(filepath.Base(working), filepath.Ext(working))
	converted := filepath.Join(dir, stem+format.FormatPNG.Extension())
	if err := format.GIFToPNG(working, converted); err != nil {
		s.log.Warn("  %s: cannot convert to PNG: %v", filepath.Base(job.Canonical), err)
		return selector.Outcome{}
	}
	out := selector.Race(ctx, s.runner, tools.ForFormat(format.FormatPNG), converted, job.Canonical,
		selector.Existing(convertLabel, converted))
	s.logFailures(job, out)
	return out
}

// choosePrimary returns the encoding to promote, or nil when nothing is
// strictly smaller than the source. The PNG path only wins when it is
// strictly smaller than the best GIF (the source itself if every GIF tool
// failed).
func choosePrimary(sourceSize int64, native, png selector.Outcome, d policy.Decision) *encoding {
	best := sourceSize
	if native.Winner != nil {
		best = native.Winner.Size
	}
	if png.Winner != nil && d.PreferPNG(png.Winner.Size, best) {
		if png.Winner.Size < sourceSize {
			return &encoding{cand: *png.Winner, typeChanged: true}
		}
	}
	if native.Winner != nil && native.Winner.Size < sourceSize {
		return &encoding{cand: *native.Winner}
	}
	return nil
}

// webpInput picks the best currently known encoding to feed the WebP
// encoder. gif2webp always receives a GIF.
func webpInput(job *Job, working string, native selector.Outcome, primary *encoding, d policy.Decision) string {
	if d.WebP == policy.WebPFromGIF {
		if native.Winner != nil && native.Winner.Size < job.Size {
			return native.Winner.Path
		}
		return working
	}
	if primary != nil {
		return primary.cand.Path
	}
	return working
}

func (s *Service[T]) encodeWebP(ctx context.Context, job *Job, input string, d policy.Decision) *selector.Candidate {
	id := d.WebP.Tool()
	out := selector.Race(ctx, s.runner, []tools.ID{id}, input, job.Canonical)
	s.logFailures(job, out)
	if out.Failed() {
		s.log.Debug("  %s: no WebP sibling: %v", filepath.Base(job.Canonical), out.Err())
	}
	return out.Winner
}

// promote moves c into the final directory under its resolved name and
// builds the result from the promoted file.
func (s *Service[T]) promote(job *Job, c selector.Candidate, ext string, typeChanged, browserSpecific bool) (Result[T], bool) {
	name := filepath.Base(job.Canonical)
	finalDir, err := s.ws.FinalDir()
	if err != nil {
		s.log.Error("%s: %v", name, err)
		return Result[T]{}, false
	}
	dst := s.resolver.Resolve(job.Canonical, naming.FinalPath(finalDir, job.Canonical, ext))
	if err := workspace.MoveFile(c.Path, dst); err != nil {
		s.log.Error("%s: cannot promote %s: %v", name, c.Tool, err)
		return Result[T]{}, false
	}
	fi, err := os.Stat(dst)
	if err != nil {
		s.log.Error("%s: %v", name, err)
		return Result[T]{}, false
	}

	check := visual.Compare(job.Canonical, dst, s.cfg.VisualTolerance)
	if check.Failed {
		s.log.Warn("  %s: visual check failed for %s: %s", name, filepath.Base(dst), check.Reason)
	}

	r := Result[T]{
		OriginalFile:        job.Canonical,
		OptimizedFile:       dst,
		OriginalSize:        job.Size,
		OptimizedSize:       fi.Size(),
		Optimized:           true,
		FileTypeChanged:     typeChanged,
		BrowserSpecific:     browserSpecific,
		FailedAutomatedTest: check.Failed,
		Tool:                string(c.Tool),
	}
	if s.meta != nil {
		r.Meta = s.meta(job.Source)
	}

	pct := int64(100)
	if job.Size > 0 {
		pct = r.OptimizedSize * 100 / job.Size
	}
	s.log.Success("  %s -> %s via %s (%d%% of original)", name, filepath.Base(dst), c.Tool, pct)
	return r, true
}

func (s *Service[T]) logFailures(job *Job, out selector.Outcome) {
	name := filepath.Base(job.Canonical)
	for _, c := range out.Candidates {
		if c.Err == nil {
			continue
		}
		var execErr *tools.ToolExecutionError
		switch {
		case errors.Is(c.Err, context.Canceled):
			s.log.Debug("  %s: %s cancelled", name, c.Tool)
		case errors.As(c.Err, &execErr):
			s.log.Warn("  %s", execErr.Detail())
		default:
			s.log.Warn("  %s: %v", name, c.Err)
		}
	}
}
