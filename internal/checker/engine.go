package checker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/christopherosthues/bibcheck/internal/bibtex"
	"github.com/christopherosthues/bibcheck/internal/schema"
)

// Engine runs the enabled checks over a collection of records.
// An Engine holds no per-run state and may be shared between goroutines.
type Engine struct {
	schema *schema.Schema
	cfg    Effective
	log    logrus.FieldLogger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an engine for s. Options are resolved once here.
func New(s *schema.Schema, opts Options, engineOpts ...EngineOption) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		schema: s,
		cfg:    opts.Resolve(),
		log:    discard,
	}
	for _, opt := range engineOpts {
		opt(e)
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Effective {
	return e.cfg
}

// Run checks records and returns a new report. Duplicate keys are detected
// once over the whole collection before the per-record checks.
func (e *Engine) Run(ctx context.Context, records []bibtex.Record) (*Report, error) {
	report := &Report{
		Duplicates: []string{},
		Results:    []Result{},
	}
	for _, c := range e.cfg.unimplemented() {
		report.Notices = append(report.Notices, Notice{Check: c, Status: NoticeUnimplemented})
	}

	if e.cfg.Keys {
		if dups := DuplicateKeys(records); len(dups) > 0 {
			report.Duplicates = dups
		}
	}

	results, err := e.checkAll(ctx, records)
	if err != nil {
		return nil, err
	}

	report.Summary.Entries = len(records)
	report.Summary.Duplicates = len(report.Duplicates)
	for _, res := range results {
		if res.Correct {
			report.Summary.Correct++
		} else {
			report.Summary.Incorrect++
		}
		if e.cfg.ErrorsOnly && res.Correct {
			continue
		}
		report.Results = append(report.Results, res)
	}

	e.log.WithFields(logrus.Fields{
		"entries":    report.Summary.Entries,
		"incorrect":  report.Summary.Incorrect,
		"duplicates": report.Summary.Duplicates,
	}).Debug("check run finished")

	return report, nil
}

// checkAll runs the per-record checks. Results are indexed by input position
// so concurrent runs produce the same order as sequential ones.
func (e *Engine) checkAll(ctx context.Context, records []bibtex.Record) ([]Result, error) {
	results := make([]Result, len(records))

	if e.cfg.Workers <= 1 {
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = e.checkRecord(i, rec)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.checkRecord(i, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkRecord runs the enabled per-record checks on rec.
func (e *Engine) checkRecord(pos int, rec bibtex.Record) Result {
	res := Result{
		Position: pos,
		Type:     rec.Type,
		ID:       rec.ID,
		Correct:  true,
	}

	if e.cfg.Fields {
		outcome, err := CheckFields(e.schema, rec)
		switch {
		case errors.Is(err, schema.ErrUnsupportedType):
			res.Correct = false
			res.Problem = ProblemUnsupportedType
			res.Lines = append(res.Lines, fmt.Sprintf(msgUnsupported, rec.Type, rec.ID))
		case errors.Is(err, ErrNoVariants):
			res.Correct = false
			res.Problem = ProblemConfigError
			res.Lines = append(res.Lines, fmt.Sprintf(msgNoVariants, rec.Type))
		case err != nil:
			res.Correct = false
			res.Problem = ProblemConfigError
			res.Lines = append(res.Lines, err.Error())
		default:
			res.Fields = &outcome
			if !outcome.Satisfied {
				res.Correct = false
				res.Lines = append(res.Lines, missingLines(rec, outcome.Missing)...)
			}
		}
	}

	if e.cfg.Abbreviations {
		res.Suggestions = SuggestAbbreviations(e.schema, rec)
		if len(res.Suggestions) > 0 {
			res.Correct = false
			res.Lines = append(res.Lines, suggestionLines(res.Suggestions)...)
		}
	}

	if res.Correct && !e.cfg.Mute && !e.cfg.ErrorsOnly {
		res.Lines = append(res.Lines, msgCorrect)
	}
	if res.Lines == nil {
		res.Lines = []string{}
	}

	e.log.WithFields(logrus.Fields{
		"key":     rec.ID,
		"type":    rec.Type,
		"correct": res.Correct,
	}).Debug("checked entry")

	return res
}
