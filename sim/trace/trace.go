package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Validation failures. Every error returned by Validator.Check wraps one of these.
var (
	ErrEmptyTag           = errors.New("empty vehicle tag")
	ErrNegativeTick       = errors.New("negative tick")
	ErrNegativeCoordinate = errors.New("negative coordinate")
	ErrUnknownCode        = errors.New("unknown movement code")
	ErrTickNotIncreasing  = errors.New("tick does not increase")
	ErrNoMovement         = errors.New("vehicle did not move")
	ErrDiagonalMove       = errors.New("row and column changed together")
	ErrLateralFloorChange = errors.New("floor change with a planar move")
)

// Validator checks each record against the last accepted one. Continuity checks
// apply only to movement records and only when the last accepted record carries
// the same tag.
type Validator struct {
	last    Record
	hasLast bool
}

// NewValidator returns a validator with no accepted record.
func NewValidator() *Validator {
	return &Validator{}
}

// Check validates r without remembering it.
func (v *Validator) Check(r Record) error {
	switch {
	case r.Tag == "":
		return fmt.Errorf("%w: %s", ErrEmptyTag, r)
	case r.Tick < 0:
		return fmt.Errorf("%w: %s", ErrNegativeTick, r)
	case r.X < 0 || r.Y < 0 || r.Z < 0:
		return fmt.Errorf("%w: %s", ErrNegativeCoordinate, r)
	case !IsValidCode(r.Code):
		return fmt.Errorf("%w: %s", ErrUnknownCode, r)
	}
	if !v.hasLast || v.last.Tag != r.Tag || !r.Code.IsMovement() {
		return nil
	}

	p := v.last
	switch {
	case r.Tick <= p.Tick:
		return fmt.Errorf("%w: %s after tick %d", ErrTickNotIncreasing, r, p.Tick)
	case r.X == p.X && r.Y == p.Y && r.Z == p.Z:
		return fmt.Errorf("%w: %s", ErrNoMovement, r)
	case r.Z == p.Z && r.X != p.X && r.Y != p.Y:
		return fmt.Errorf("%w: %s after (%d,%d)", ErrDiagonalMove, r, p.X, p.Y)
	case r.Z != p.Z && (r.X != p.X || r.Y != p.Y):
		return fmt.Errorf("%w: %s after (%d,%d,%d)", ErrLateralFloorChange, r, p.X, p.Y, p.Z)
	}
	return nil
}

// Accept validates r and, if valid, makes it the record later ones are checked against.
func (v *Validator) Accept(r Record) error {
	if err := v.Check(r); err != nil {
		return err
	}
	v.last = r
	v.hasLast = true
	return nil
}

// Writer writes validated records to an output stream. Records failing
// validation are logged and dropped; the simulation carries on.
type Writer struct {
	out       *bufio.Writer
	validator *Validator
	Written   int
	Dropped   int
}

// NewWriter creates a Writer ready for recording.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		out:       bufio.NewWriter(w),
		validator: NewValidator(),
	}
}

// Write validates and writes r. Only output errors are returned.
func (tw *Writer) Write(r Record) error {
	if err := tw.validator.Accept(r); err != nil {
		tw.Dropped++
		logrus.WithFields(logrus.Fields{
			"tag":  r.Tag,
			"tick": r.Tick,
			"code": string(r.Code),
		}).Warnf("dropping trace record: %v", err)
		return nil
	}
	if _, err := fmt.Fprintln(tw.out, r.String()); err != nil {
		return fmt.Errorf("writing trace record: %w", err)
	}
	tw.Written++
	return nil
}

// Flush writes any buffered records to the underlying stream.
func (tw *Writer) Flush() error {
	if err := tw.out.Flush(); err != nil {
		return fmt.Errorf("flushing trace: %w", err)
	}
	return nil
}
