package models

import (
	"fmt"
)

// Policy описывает правила слияния для конкретного типа записей:
// sticky-поля, защиту от обнуления и доменную валидацию.
type Policy struct {
	// Validate отклоняет невозможные значения до слияния. nil означает "всё допустимо".
	Validate func(f Fields) error
	Kind     string
	// Sticky поля могут меняться только false -> true.
	Sticky []string
	// ZeroGuarded числовые поля, которые нельзя обнулить свежей ненулевой локальной записью.
	ZeroGuarded []string
	// Derived поля заполняются на клиенте из связанных данных сервера и не отправляются при push.
	Derived []string
	// Monotonic поле, по которому выбирается победитель при очистке дубликатов.
	Monotonic string
	// Unique означает одну запись на (owner, entity).
	Unique bool
}

// IsSticky reports whether name is a sticky field of the kind.
func (p Policy) IsSticky(name string) bool {
	for _, s := range p.Sticky {
		if s == name {
			return true
		}
	}
	return false
}

// Payload returns a copy of f without derived fields.
func (p Policy) Payload(f Fields) Fields {
	out := f.Clone()
	if out == nil {
		out = Fields{}
	}
	for _, name := range p.Derived {
		delete(out, name)
	}
	return out
}

// Check runs the domain guard, if any.
func (p Policy) Check(f Fields) error {
	if p.Validate == nil {
		return nil
	}
	return p.Validate(f)
}

// Policies is a registry of policies by kind.
type Policies map[string]Policy

// Get returns the policy for kind or ErrUnknownKind.
func (ps Policies) Get(kind string) (Policy, error) {
	p, ok := ps[kind]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return p, nil
}

// DefaultPolicies returns the policies of the built-in kinds.
// progressTolerance is how far (in seconds) a position may exceed the duration.
func DefaultPolicies(progressTolerance float64) Policies {
	return Policies{
		KindProgress: ProgressPolicy(progressTolerance),
		KindComment:  CommentPolicy(),
		KindProfile:  ProfilePolicy(),
	}
}

// ProgressPolicy: completed is sticky, position is zero-guarded and bounded by duration.
func ProgressPolicy(tolerance float64) Policy {
	return Policy{
		Kind:        KindProgress,
		Sticky:      []string{FieldCompleted},
		ZeroGuarded: []string{FieldPosition},
		Monotonic:   FieldPosition,
		Unique:      true,
		Validate: func(f Fields) error {
			position := f.Float(FieldPosition)
			duration := f.Float(FieldDuration)
			if position < 0 {
				return fmt.Errorf("%w: negative position %.1f", ErrInvalidValue, position)
			}
			if duration < 0 {
				return fmt.Errorf("%w: negative duration %.1f", ErrInvalidValue, duration)
			}
			// duration == 0 значит длительность ещё неизвестна
			if duration > 0 && position > duration+tolerance {
				return fmt.Errorf("%w: position %.1f exceeds duration %.1f", ErrInvalidValue, position, duration)
			}
			return nil
		},
	}
}

// CommentPolicy has no sticky fields; empty text is rejected.
// Reactions are derived from the server's reaction summary.
func CommentPolicy() Policy {
	return Policy{
		Kind:    KindComment,
		Derived: []string{FieldReactions},
		Validate: func(f Fields) error {
			if f.String(FieldText) == "" {
				return fmt.Errorf("%w: empty comment text", ErrInvalidValue)
			}
			return nil
		},
	}
}

// ProfilePolicy: onboarded is sticky, one profile per owner.
func ProfilePolicy() Policy {
	return Policy{
		Kind:   KindProfile,
		Sticky: []string{FieldOnboarded},
		Unique: true,
	}
}
