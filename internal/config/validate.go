package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfiguration marks a malformed or contradictory configuration.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Validate checks c, and every breakpoint variant of it, against a slide set
// of slideCount slides.
func Validate(c Config, slideCount int) error {
	if slideCount < 1 {
		return fmt.Errorf("%w: slide set is empty", ErrInvalidConfiguration)
	}
	if c.InitialSlide < 0 || c.InitialSlide >= slideCount {
		return fmt.Errorf("%w: initialSlide %d outside [0, %d)", ErrInvalidConfiguration, c.InitialSlide, slideCount)
	}
	if c.Creative.LimitProgress < 0 {
		return fmt.Errorf("%w: creativeEffect.limitProgress must be >= 0", ErrInvalidConfiguration)
	}
	if err := validateVariant(c, slideCount); err != nil {
		return err
	}
	for _, bp := range c.Breakpoints {
		if bp.MinWidth < 0 {
			return fmt.Errorf("%w: breakpoint %d is negative", ErrInvalidConfiguration, bp.MinWidth)
		}
		if err := validateVariant(bp.Override.Apply(c), slideCount); err != nil {
			return fmt.Errorf("breakpoint %d: %w", bp.MinWidth, err)
		}
	}
	return nil
}

func validateVariant(c Config, slideCount int) error {
	if c.SlidesPerGroup < 1 {
		return fmt.Errorf("%w: slidesPerGroup must be >= 1, got %d", ErrInvalidConfiguration, c.SlidesPerGroup)
	}
	if !c.Loop && c.SlidesPerGroup > slideCount {
		return fmt.Errorf("%w: slidesPerGroup %d exceeds slide count %d without loop",
			ErrInvalidConfiguration, c.SlidesPerGroup, slideCount)
	}
	if !c.SlidesPerView.Auto && (c.SlidesPerView.Count <= 0 || math.IsNaN(c.SlidesPerView.Count) || math.IsInf(c.SlidesPerView.Count, 0)) {
		return fmt.Errorf("%w: slidesPerView must be positive or \"auto\", got %s", ErrInvalidConfiguration, c.SlidesPerView)
	}
	if c.SpaceBetween < 0 || math.IsNaN(c.SpaceBetween) {
		return fmt.Errorf("%w: spaceBetween must be >= 0", ErrInvalidConfiguration)
	}
	if c.Speed < 0 {
		return fmt.Errorf("%w: speed must be >= 0", ErrInvalidConfiguration)
	}
	if c.AutoplayDelay < 0 {
		return fmt.Errorf("%w: autoplay delay must be >= 0", ErrInvalidConfiguration)
	}
	switch c.Direction {
	case Horizontal, Vertical:
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidConfiguration, c.Direction)
	}
	switch c.Effect {
	case EffectSlide, EffectFade, EffectCreative:
	default:
		return fmt.Errorf("%w: unknown effect %q", ErrInvalidConfiguration, c.Effect)
	}
	return nil
}
