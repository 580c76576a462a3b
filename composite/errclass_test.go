package composite_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ShadowBlip/InputPlumber-sub000/composite"
)

func TestClassifyNilIsNil(t *testing.T) {
	assert.NoError(t, composite.Classify(composite.KindFatal, nil))
}

func TestKindOfRoundTrips(t *testing.T) {
	err := composite.Classify(composite.KindDeviceGone, errors.New("ENODEV"))
	assert.Equal(t, composite.KindDeviceGone, composite.KindOf(err))
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	err := composite.Classify(composite.KindTransientIO, errors.New("EAGAIN"))
	wrapped := fmt.Errorf("evdev read: %w", err)
	assert.Equal(t, composite.KindTransientIO, composite.KindOf(wrapped))
}

func TestKindOfDefaultsToFatalForUnclassified(t *testing.T) {
	assert.Equal(t, composite.KindFatal, composite.KindOf(errors.New("unclassified")))
}
