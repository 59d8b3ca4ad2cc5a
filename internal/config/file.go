package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Presets is a set of named carousel configurations read from one YAML file.
type Presets struct {
	order   []string
	configs map[string]Config

	// Warnings lists duplicate keys and ignored options found while parsing.
	Warnings []string
}

// Names returns the preset names in declaration order.
func (p *Presets) Names() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

func (p *Presets) Get(name string) (Config, bool) {
	c, ok := p.configs[name]
	return c, ok
}

func (p *Presets) Len() int {
	return len(p.order)
}

var knownOptions = map[string]bool{
	"slidesPerView":  true,
	"spaceBetween":   true,
	"slidesPerGroup": true,
	"loop":           true,
	"direction":      true,
	"speed":          true,
	"autoplay":       true,
	"autoplayDelay":  true,
	"effect":         true,
	"creativeEffect": true,
	"initialSlide":   true,
	"breakpoints":    true,
}

var knownOverrideOptions = map[string]bool{
	"slidesPerView":  true,
	"spaceBetween":   true,
	"slidesPerGroup": true,
	"loop":           true,
	"direction":      true,
	"speed":          true,
	"autoplay":       true,
	"autoplayDelay":  true,
	"effect":         true,
}

// Load reads presets from a YAML file.
func Load(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a presets document of the form
//
//	carousels:
//	  hero:
//	    slidesPerView: 1
//	    breakpoints:
//	      768: {slidesPerView: 2}
//
// A document without the carousels key is read as the carousels mapping
// itself. A key repeated inside one mapping keeps its last value.
func Parse(data []byte) (*Presets, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("configuration document is empty")
	}

	p := &Presets{configs: make(map[string]Config)}
	root := doc.Content[0]
	p.Warnings = append(p.Warnings, dedupeKeys(root, "")...)

	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of carousels", root.Line)
	}
	carousels := root
	if v := lookup(root, "carousels"); v != nil {
		carousels = v
	}
	if carousels.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: carousels must be a mapping", carousels.Line)
	}

	for i := 0; i+1 < len(carousels.Content); i += 2 {
		name := carousels.Content[i].Value
		cfg, warnings, err := decodeCarousel(carousels.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("carousel %q: %w", name, err)
		}
		for _, w := range warnings {
			p.Warnings = append(p.Warnings, fmt.Sprintf("carousel %q: %s", name, w))
		}
		p.order = append(p.order, name)
		p.configs[name] = cfg
	}
	return p, nil
}

type rawAutoplay struct {
	Enabled              bool     `yaml:"-"`
	Delay                *float64 `yaml:"delay"`
	StopOnLastSlide      *bool    `yaml:"stopOnLastSlide"`
	DisableOnInteraction *bool    `yaml:"disableOnInteraction"`
	ReverseDirection     *bool    `yaml:"reverseDirection"`
}

// UnmarshalYAML accepts a boolean switch or an options mapping.
func (a *rawAutoplay) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var on bool
		if err := value.Decode(&on); err != nil {
			return fmt.Errorf("autoplay: expected boolean or mapping, got %q", value.Value)
		}
		*a = rawAutoplay{Enabled: on}
		return nil
	}
	type plain rawAutoplay
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*a = rawAutoplay(p)
	a.Enabled = true
	return nil
}

func (a *rawAutoplay) delay() time.Duration {
	if !a.Enabled {
		return 0
	}
	if a.Delay == nil {
		return DefaultAutoplayDelay
	}
	return millis(*a.Delay)
}

type rawOverride struct {
	SlidesPerView  *SlidesPerView `yaml:"slidesPerView"`
	SpaceBetween   *float64       `yaml:"spaceBetween"`
	SlidesPerGroup *int           `yaml:"slidesPerGroup"`
	Loop           *bool          `yaml:"loop"`
	Direction      *string        `yaml:"direction"`
	Speed          *float64       `yaml:"speed"`
	Autoplay       *rawAutoplay   `yaml:"autoplay"`
	AutoplayDelay  *float64       `yaml:"autoplayDelay"`
	Effect         *string        `yaml:"effect"`
}

func (r rawOverride) override() Override {
	o := Override{
		SlidesPerView:  r.SlidesPerView,
		SpaceBetween:   r.SpaceBetween,
		SlidesPerGroup: r.SlidesPerGroup,
		Loop:           r.Loop,
	}
	if r.Direction != nil {
		d := Direction(strings.ToLower(strings.TrimSpace(*r.Direction)))
		o.Direction = &d
	}
	if r.Effect != nil {
		e := Effect(strings.ToLower(strings.TrimSpace(*r.Effect)))
		o.Effect = &e
	}
	if r.Speed != nil {
		s := millis(*r.Speed)
		o.Speed = &s
	}
	// autoplayDelay is the more specific spelling and wins over autoplay.delay.
	switch {
	case r.AutoplayDelay != nil:
		d := millis(*r.AutoplayDelay)
		o.AutoplayDelay = &d
	case r.Autoplay != nil:
		d := r.Autoplay.delay()
		o.AutoplayDelay = &d
	}
	return o
}

type rawCreative struct {
	Prev          Transform `yaml:"prev"`
	Next          Transform `yaml:"next"`
	LimitProgress *float64  `yaml:"limitProgress"`
}

type rawOptions struct {
	rawOverride    `yaml:",inline"`
	InitialSlide   *int         `yaml:"initialSlide"`
	CreativeEffect *rawCreative `yaml:"creativeEffect"`
	Breakpoints    yaml.Node    `yaml:"breakpoints"`
}

func decodeCarousel(node *yaml.Node) (Config, []string, error) {
	if node.Kind != yaml.MappingNode {
		return Config{}, nil, fmt.Errorf("line %d: options must be a mapping", node.Line)
	}
	warnings := unknownKeys(node, knownOptions, "")

	var raw rawOptions
	if err := node.Decode(&raw); err != nil {
		return Config{}, nil, err
	}

	cfg := raw.override().Apply(Default())
	if raw.InitialSlide != nil {
		cfg.InitialSlide = *raw.InitialSlide
	}
	if a := raw.Autoplay; a != nil && a.Enabled {
		if a.StopOnLastSlide != nil {
			cfg.AutoplayStopOnLastSlide = *a.StopOnLastSlide
		}
		if a.DisableOnInteraction != nil {
			cfg.AutoplayDisableOnInteraction = *a.DisableOnInteraction
		}
		if a.ReverseDirection != nil {
			cfg.AutoplayReverse = *a.ReverseDirection
		}
	}
	if c := raw.CreativeEffect; c != nil {
		cfg.Creative.Prev = c.Prev
		cfg.Creative.Next = c.Next
		if c.LimitProgress != nil {
			cfg.Creative.LimitProgress = *c.LimitProgress
		}
	}

	bps, bpWarnings, err := decodeBreakpoints(&raw.Breakpoints)
	if err != nil {
		return Config{}, nil, err
	}
	cfg.Breakpoints = bps
	warnings = append(warnings, bpWarnings...)
	return cfg, warnings, nil
}

func decodeBreakpoints(node *yaml.Node) ([]Breakpoint, []string, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("line %d: breakpoints must be a mapping", node.Line)
	}

	var bps []Breakpoint
	var warnings []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		minWidth, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(key.Value), "px"))
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: breakpoint key %q is not a pixel width", key.Line, key.Value)
		}

		var raw rawOverride
		if value.Kind != yaml.ScalarNode || value.Tag != "!!null" {
			if value.Kind != yaml.MappingNode {
				return nil, nil, fmt.Errorf("line %d: breakpoint %d must be a mapping", value.Line, minWidth)
			}
			warnings = append(warnings, unknownKeys(value, knownOverrideOptions, fmt.Sprintf("breakpoint %d: ", minWidth))...)
			if err := value.Decode(&raw); err != nil {
				return nil, nil, fmt.Errorf("breakpoint %d: %w", minWidth, err)
			}
		}
		bps = append(bps, Breakpoint{MinWidth: minWidth, Override: raw.override()})
	}
	return bps, warnings, nil
}

// dedupeKeys removes every earlier occurrence of a repeated mapping key so
// that the last value wins, and reports each removal.
func dedupeKeys(n *yaml.Node, path string) []string {
	var warnings []string
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			warnings = append(warnings, dedupeKeys(c, path)...)
		}
	case yaml.MappingNode:
		last := make(map[string]int)
		for i := 0; i+1 < len(n.Content); i += 2 {
			last[n.Content[i].Value] = i
		}
		kept := make([]*yaml.Node, 0, len(n.Content))
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if j := last[key.Value]; j != i {
				warnings = append(warnings, fmt.Sprintf("%s%s: duplicate key at line %d overridden by line %d",
					path, key.Value, key.Line, n.Content[j].Line))
				continue
			}
			kept = append(kept, key, value)
			warnings = append(warnings, dedupeKeys(value, path+key.Value+".")...)
		}
		n.Content = kept
	}
	return warnings
}

func unknownKeys(n *yaml.Node, known map[string]bool, prefix string) []string {
	var warnings []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !known[key.Value] {
			warnings = append(warnings, fmt.Sprintf("%sunknown option %q at line %d ignored", prefix, key.Value, key.Line))
		}
	}
	return warnings
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

type overrideView struct {
	SlidesPerView  *SlidesPerView `yaml:"slidesPerView,omitempty"`
	SpaceBetween   *float64       `yaml:"spaceBetween,omitempty"`
	SlidesPerGroup *int           `yaml:"slidesPerGroup,omitempty"`
	Loop           *bool          `yaml:"loop,omitempty"`
	Direction      *Direction     `yaml:"direction,omitempty"`
	Speed          *int64         `yaml:"speed,omitempty"`
	AutoplayDelay  *int64         `yaml:"autoplayDelay,omitempty"`
	Effect         *Effect        `yaml:"effect,omitempty"`
}

type autoplayView struct {
	Delay                int64 `yaml:"delay"`
	StopOnLastSlide      bool  `yaml:"stopOnLastSlide,omitempty"`
	DisableOnInteraction bool  `yaml:"disableOnInteraction,omitempty"`
	ReverseDirection     bool  `yaml:"reverseDirection,omitempty"`
}

type creativeView struct {
	Prev          Transform `yaml:"prev"`
	Next          Transform `yaml:"next"`
	LimitProgress float64   `yaml:"limitProgress"`
}

type configView struct {
	SlidesPerView  SlidesPerView        `yaml:"slidesPerView"`
	SpaceBetween   float64              `yaml:"spaceBetween"`
	SlidesPerGroup int                  `yaml:"slidesPerGroup"`
	Loop           bool                 `yaml:"loop"`
	Direction      Direction            `yaml:"direction"`
	Speed          int64                `yaml:"speed"`
	InitialSlide   int                  `yaml:"initialSlide,omitempty"`
	Autoplay       *autoplayView        `yaml:"autoplay,omitempty"`
	Effect         Effect               `yaml:"effect"`
	CreativeEffect *creativeView        `yaml:"creativeEffect,omitempty"`
	Breakpoints    map[int]overrideView `yaml:"breakpoints,omitempty"`
}

// Marshal renders c under carousels.<name> in the same format Parse reads.
// Breakpoints sharing a MinWidth collapse to the one declared last.
func Marshal(name string, c Config) ([]byte, error) {
	v := configView{
		SlidesPerView:  c.SlidesPerView,
		SpaceBetween:   c.SpaceBetween,
		SlidesPerGroup: c.SlidesPerGroup,
		Loop:           c.Loop,
		Direction:      c.Direction,
		Speed:          c.Speed.Milliseconds(),
		InitialSlide:   c.InitialSlide,
		Effect:         c.Effect,
	}
	if c.AutoplayEnabled() {
		v.Autoplay = &autoplayView{
			Delay:                c.AutoplayDelay.Milliseconds(),
			StopOnLastSlide:      c.AutoplayStopOnLastSlide,
			DisableOnInteraction: c.AutoplayDisableOnInteraction,
			ReverseDirection:     c.AutoplayReverse,
		}
	}
	if c.Effect == EffectCreative {
		v.CreativeEffect = &creativeView{Prev: c.Creative.Prev, Next: c.Creative.Next, LimitProgress: c.Creative.LimitProgress}
	}
	if len(c.Breakpoints) > 0 {
		v.Breakpoints = make(map[int]overrideView, len(c.Breakpoints))
		for _, bp := range c.Breakpoints {
			v.Breakpoints[bp.MinWidth] = viewOf(bp.Override)
		}
	}
	return yaml.Marshal(map[string]map[string]configView{"carousels": {name: v}})
}

func viewOf(o Override) overrideView {
	v := overrideView{
		SlidesPerView:  o.SlidesPerView,
		SpaceBetween:   o.SpaceBetween,
		SlidesPerGroup: o.SlidesPerGroup,
		Loop:           o.Loop,
		Direction:      o.Direction,
		Effect:         o.Effect,
	}
	if o.Speed != nil {
		ms := o.Speed.Milliseconds()
		v.Speed = &ms
	}
	if o.AutoplayDelay != nil {
		ms := o.AutoplayDelay.Milliseconds()
		v.AutoplayDelay = &ms
	}
	return v
}

// SortedNames returns the preset names in lexical order.
func (p *Presets) SortedNames() []string {
	names := p.Names()
	sort.Strings(names)
	return names
}
