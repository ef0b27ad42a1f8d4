// Package check provides tool diagnostics (the check command) and the
// pre-batch validation of the tools directory.
package check

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/backmassage/pixmaster/internal/tools"
)

// Sentinel errors returned by CheckTools.
var (
	ErrToolsDirMissing = errors.New("tools directory does not exist")
	ErrToolsMissing    = errors.New("optimizer tools missing")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Status is the lookup result for one tool.
type Status struct {
	Tool tools.ID
	Path string
	Err  error // nil when the executable is usable.
}

// Statuses looks up every known tool in dir.
func Statuses(dir string) []Status {
	r := tools.NewRunner(dir, tools.Options{})
	out := make([]Status, 0, len(tools.All))
	for _, id := range tools.All {
		out = append(out, Status{Tool: id, Path: r.Path(id), Err: r.Lookup(id)})
	}
	return out
}

// RunCheck prints the availability of every optimizer in dir. It is
// informational only and does not stop on failure.
func RunCheck(dir string, log Logger) {
	log.Info("=== Tool Check ===")
	log.Info("Tools directory: %s", dir)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		log.Error("%v: %s", ErrToolsDirMissing, dir)
		return
	}
	ok := 0
	for _, s := range Statuses(dir) {
		if s.Err != nil {
			log.Warn("%-10s missing (%v)", s.Tool, s.Err)
			continue
		}
		ok++
		log.Success("%-10s %s", s.Tool, s.Path)
	}
	if ok == len(tools.All) {
		log.Success("All %d tools available", ok)
	} else {
		log.Warn("%d of %d tools available; missing tools are skipped during optimization", ok, len(tools.All))
	}
}

// CheckTools is the pre-batch validation: the directory must exist and at
// least one tool must be usable. Missing tools are reported in the error
// but do not fail the check unless all of them are missing.
func CheckTools(dir string) (missing []tools.ID, err error) {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrToolsDirMissing, dir)
	}
	for _, s := range Statuses(dir) {
		if s.Err != nil {
			missing = append(missing, s.Tool)
		}
	}
	if len(missing) == len(tools.All) {
		return missing, fmt.Errorf("%w: none of %s found in %s", ErrToolsMissing, joinIDs(tools.All), dir)
	}
	return missing, nil
}

func joinIDs(ids []tools.ID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = string(id)
	}
	return strings.Join(s, ", ")
}
