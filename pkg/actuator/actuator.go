// Package actuator executes physical arm actions on the robot. The
// action vocabulary is a fixed enumerated set; unknown identifiers
// fail locally without contacting hardware.
package actuator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownAction indicates an identifier outside the action set.
	ErrUnknownAction = errors.New("actuator: unknown action")

	// ErrFailed indicates the hardware bridge rejected or failed the action.
	ErrFailed = errors.New("actuator: execution failed")
)

// Action identifies one predefined arm action.
type Action string

// The full arm action vocabulary.
const (
	ActionReleaseArm  Action = "release_arm"
	ActionShakeHand   Action = "shake_hand"
	ActionHighFive    Action = "high_five"
	ActionHug         Action = "hug"
	ActionHighWave    Action = "high_wave"
	ActionClap        Action = "clap"
	ActionFaceWave    Action = "face_wave"
	ActionLeftKiss    Action = "left_kiss"
	ActionHeart       Action = "heart"
	ActionRightHeart  Action = "right_heart"
	ActionHandsUp     Action = "hands_up"
	ActionXRay        Action = "x_ray"
	ActionRightHandUp Action = "right_hand_up"
	ActionReject      Action = "reject"
	ActionRightKiss   Action = "right_kiss"
	ActionTwoHandKiss Action = "two_hand_kiss"
)

// actionNames maps identifiers to the hardware action names the bridge
// understands.
var actionNames = map[Action]string{
	ActionReleaseArm:  "release arm",
	ActionShakeHand:   "shake hand",
	ActionHighFive:    "high five",
	ActionHug:         "hug",
	ActionHighWave:    "high wave",
	ActionClap:        "clap",
	ActionFaceWave:    "face wave",
	ActionLeftKiss:    "left kiss",
	ActionHeart:       "heart",
	ActionRightHeart:  "right heart",
	ActionHandsUp:     "hands up",
	ActionXRay:        "x-ray",
	ActionRightHandUp: "right hand up",
	ActionReject:      "reject",
	ActionRightKiss:   "right kiss",
	ActionTwoHandKiss: "two-hand kiss",
}

// Normalize converts a free-form identifier (spaces, mixed case) into
// canonical form and validates it against the action set.
func Normalize(name string) (Action, error) {
	canonical := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_"))
	if _, ok := actionNames[canonical]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return canonical, nil
}

// HardwareName returns the bridge-facing name for an action.
func (a Action) HardwareName() string {
	return actionNames[a]
}

// Known reports whether the action is in the vocabulary.
func (a Action) Known() bool {
	_, ok := actionNames[a]
	return ok
}

// Available returns the sorted action identifiers.
func Available() []Action {
	out := make([]Action, 0, len(actionNames))
	for a := range actionNames {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Driver executes actions on hardware (or a simulator).
type Driver interface {
	// Execute performs one action and blocks until it completes or
	// fails. Unknown actions fail before reaching hardware.
	Execute(ctx context.Context, action Action) error

	Close() error
}
