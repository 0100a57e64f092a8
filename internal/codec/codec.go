package codec

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/session"
)

// Field names shared by the wire and the snapshot file.
const (
	FieldSessionID     = "session_id"
	FieldPhase         = "phase"
	FieldActiveSide    = "active_side"
	FieldRemaining1MS  = "remaining1_ms"
	FieldRemaining2MS  = "remaining2_ms"
	FieldDisplay1      = "display1"
	FieldDisplay2      = "display2"
	FieldAlarmFired    = "alarm_fired"
	FieldMoves         = "moves"
	FieldState         = "state"
	FieldConfig        = "config"
	FieldPending       = "pending"
	FieldSignals       = "signals"
	FieldMinutes1      = "minutes_player1"
	FieldMinutes2      = "minutes_player2"
	FieldIncrement     = "increment_seconds"
	FieldDifferentTime = "different_time_per_player"
	FieldSoundEnabled  = "sound_enabled"
)

var (
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidField is returned when a field has the wrong type or value.
	ErrInvalidField = errors.New("invalid field")
)

// StateToStruct encodes a clock state.
func StateToStruct(s clock.State) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldSessionID:    structpb.NewStringValue(s.SessionID.String()),
			FieldPhase:        structpb.NewStringValue(s.Phase.String()),
			FieldActiveSide:   structpb.NewStringValue(s.ActiveSide.String()),
			FieldRemaining1MS: structpb.NewNumberValue(float64(s.Remaining1.Milliseconds())),
			FieldRemaining2MS: structpb.NewNumberValue(float64(s.Remaining2.Milliseconds())),
			FieldDisplay1:     structpb.NewStringValue(clock.FormatRemaining(s.Remaining1)),
			FieldDisplay2:     structpb.NewStringValue(clock.FormatRemaining(s.Remaining2)),
			FieldAlarmFired:   structpb.NewBoolValue(s.AlarmFired),
			FieldMoves:        structpb.NewNumberValue(float64(s.Moves)),
		},
	}
}

// StateFromStruct decodes a clock state. Display fields are ignored.
func StateFromStruct(msg *structpb.Struct) (clock.State, error) {
	var state clock.State

	fields := msg.GetFields()

	id, err := stringField(fields, FieldSessionID)
	if err != nil {
		return state, err
	}

	if state.SessionID, err = uuid.Parse(id); err != nil {
		return state, fmt.Errorf("%s: %w", FieldSessionID, ErrInvalidField)
	}

	phase, err := stringField(fields, FieldPhase)
	if err != nil {
		return state, err
	}

	var ok bool
	if state.Phase, ok = clock.ParsePhase(phase); !ok {
		return state, fmt.Errorf("%s %q: %w", FieldPhase, phase, ErrInvalidField)
	}

	side, err := stringField(fields, FieldActiveSide)
	if err != nil {
		return state, err
	}

	if state.ActiveSide, err = clock.ParseSide(side); err != nil {
		return state, fmt.Errorf("%s: %w", FieldActiveSide, err)
	}

	remaining1, err := intField(fields, FieldRemaining1MS)
	if err != nil {
		return state, err
	}

	remaining2, err := intField(fields, FieldRemaining2MS)
	if err != nil {
		return state, err
	}

	state.Remaining1 = time.Duration(remaining1) * time.Millisecond
	state.Remaining2 = time.Duration(remaining2) * time.Millisecond

	if state.AlarmFired, err = boolField(fields, FieldAlarmFired); err != nil {
		return state, err
	}

	moves, err := intField(fields, FieldMoves)
	if err != nil {
		return state, err
	}

	state.Moves = int(moves)

	return state, nil
}

// ConfigToStruct encodes a time control.
func ConfigToStruct(c clock.Config) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldMinutes1:      structpb.NewNumberValue(float64(c.MinutesPlayer1)),
			FieldMinutes2:      structpb.NewNumberValue(float64(c.MinutesPlayer2)),
			FieldIncrement:     structpb.NewNumberValue(float64(c.IncrementSeconds)),
			FieldDifferentTime: structpb.NewBoolValue(c.DifferentTimePerPlayer),
			FieldSoundEnabled:  structpb.NewBoolValue(c.SoundEnabled),
		},
	}
}

// MergeConfig overlays the fields present in msg onto base. Absent fields
// keep their value from base; the result is not validated.
func MergeConfig(base clock.Config, msg *structpb.Struct) (clock.Config, error) {
	fields := msg.GetFields()

	ints := []struct {
		name string
		dst  *int
	}{
		{FieldMinutes1, &base.MinutesPlayer1},
		{FieldMinutes2, &base.MinutesPlayer2},
		{FieldIncrement, &base.IncrementSeconds},
	}

	for _, f := range ints {
		if _, ok := fields[f.name]; !ok {
			continue
		}

		v, err := intField(fields, f.name)
		if err != nil {
			return base, err
		}

		*f.dst = int(v)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{FieldDifferentTime, &base.DifferentTimePerPlayer},
		{FieldSoundEnabled, &base.SoundEnabled},
	}

	for _, f := range bools {
		if _, ok := fields[f.name]; !ok {
			continue
		}

		v, err := boolField(fields, f.name)
		if err != nil {
			return base, err
		}

		*f.dst = v
	}

	return base, nil
}

// ConfigFromStruct decodes a complete time control.
func ConfigFromStruct(msg *structpb.Struct) (clock.Config, error) {
	for _, name := range []string{FieldMinutes1, FieldMinutes2, FieldIncrement, FieldDifferentTime, FieldSoundEnabled} {
		if _, ok := msg.GetFields()[name]; !ok {
			return clock.Config{}, fmt.Errorf("%s: %w", name, ErrMissingField)
		}
	}

	return MergeConfig(clock.Config{}, msg)
}

// UpdateToStruct encodes a session update: the state, the active time
// control, whether a change is staged and the signals raised.
func UpdateToStruct(u session.Update) *structpb.Struct {
	signals := make([]*structpb.Value, 0, len(u.Signals))
	for _, sig := range u.Signals {
		signals = append(signals, structpb.NewStringValue(sig.String()))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldState:   structpb.NewStructValue(StateToStruct(u.State)),
			FieldConfig:  structpb.NewStructValue(ConfigToStruct(u.Config)),
			FieldPending: structpb.NewBoolValue(u.Pending),
			FieldSignals: structpb.NewListValue(&structpb.ListValue{Values: signals}),
		},
	}
}

// UpdateFromStruct decodes a session update. Unknown signals are skipped.
func UpdateFromStruct(msg *structpb.Struct) (session.Update, error) {
	var update session.Update

	fields := msg.GetFields()

	stateMsg := fields[FieldState].GetStructValue()
	if stateMsg == nil {
		return update, fmt.Errorf("%s: %w", FieldState, ErrMissingField)
	}

	state, err := StateFromStruct(stateMsg)
	if err != nil {
		return update, fmt.Errorf("%s: %w", FieldState, err)
	}

	configMsg := fields[FieldConfig].GetStructValue()
	if configMsg == nil {
		return update, fmt.Errorf("%s: %w", FieldConfig, ErrMissingField)
	}

	cfg, err := ConfigFromStruct(configMsg)
	if err != nil {
		return update, fmt.Errorf("%s: %w", FieldConfig, err)
	}

	update.State = state
	update.Config = cfg
	update.Pending = fields[FieldPending].GetBoolValue()

	for _, v := range fields[FieldSignals].GetListValue().GetValues() {
		switch v.GetStringValue() {
		case session.SignalClick.String():
			update.Signals = append(update.Signals, session.SignalClick)
		case session.SignalAlarm.String():
			update.Signals = append(update.Signals, session.SignalAlarm)
		}
	}

	return update, nil
}

func stringField(fields map[string]*structpb.Value, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrMissingField)
	}

	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s is not a string: %w", name, ErrInvalidField)
	}

	return s.StringValue, nil
}

func intField(fields map[string]*structpb.Value, name string) (int64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, ErrMissingField)
	}

	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s is not a number: %w", name, ErrInvalidField)
	}

	if n.NumberValue != math.Trunc(n.NumberValue) ||
		math.Abs(n.NumberValue) > float64(math.MaxInt32)*1000 {
		return 0, fmt.Errorf("%s is not an integer: %w", name, ErrInvalidField)
	}

	return int64(n.NumberValue), nil
}

func boolField(fields map[string]*structpb.Value, name string) (bool, error) {
	v, ok := fields[name]
	if !ok {
		return false, fmt.Errorf("%s: %w", name, ErrMissingField)
	}

	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%s is not a boolean: %w", name, ErrInvalidField)
	}

	return b.BoolValue, nil
}
