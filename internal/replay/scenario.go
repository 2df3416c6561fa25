// Package replay drives a terminal from a scripted scenario. A scenario
// lists catalog items and operator steps; each step may move a virtual
// clock forward first, so debounce behavior is reproducible.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

var ErrInvalidScenario = errors.New("invalid scenario")

type Scenario struct {
	Name        string        `yaml:"name"`
	Terminal    string        `yaml:"terminal"`
	Operator    string        `yaml:"operator"`
	StartNumber int64         `yaml:"start_number"`
	Debounce    time.Duration `yaml:"debounce"`
	Catalog     []CatalogItem `yaml:"catalog"`
	Steps       []Step        `yaml:"steps"`
	Expect      *Expectation  `yaml:"expect"`
}

type CatalogItem struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Unit        string `yaml:"unit"`
	Price       string `yaml:"price"`
}

// Step holds exactly one action. After advances the clock before it runs.
type Step struct {
	After       time.Duration `yaml:"after"`
	Key         string        `yaml:"key"`
	Scan        string        `yaml:"scan"`
	Type        string        `yaml:"type"`
	Quantity    *QuantityStep `yaml:"quantity"`
	Decrement   string        `yaml:"decrement"`
	Void        string        `yaml:"void"`
	Note        *string       `yaml:"note"`
	Buyer       *string       `yaml:"buyer"`
	SkipBuyer   bool          `yaml:"skip_buyer"`
	Pay         string        `yaml:"pay"`
	Receipt     *bool         `yaml:"receipt"`
	ExpectError string        `yaml:"expect_error"`
}

type QuantityStep struct {
	Code string `yaml:"code"`
	N    int    `yaml:"n"`
}

// Expectation is checked against the terminal after the last step.
type Expectation struct {
	State string `yaml:"state"`
	Total string `yaml:"total"`
	Lines *int   `yaml:"lines"`
	Sales *int   `yaml:"sales"`
}

// Load reads a scenario file.
func Load(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if err := sc.validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

func (sc *Scenario) validate() error {
	if strings.TrimSpace(sc.Terminal) == "" {
		sc.Terminal = "replay"
	}
	if strings.TrimSpace(sc.Operator) == "" {
		sc.Operator = "replay"
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, step := range sc.Steps {
		if _, err := step.action(); err != nil {
			return fmt.Errorf("%w: step %d: %w", ErrInvalidScenario, i+1, err)
		}
		if step.After < 0 {
			return fmt.Errorf("%w: step %d: negative delay", ErrInvalidScenario, i+1)
		}
	}
	if _, err := sc.items(); err != nil {
		return err
	}
	return nil
}

func (sc Scenario) items() ([]catalog.Item, error) {
	items := make([]catalog.Item, 0, len(sc.Catalog))
	for _, raw := range sc.Catalog {
		price, err := money.Parse(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: item %s: %w", ErrInvalidScenario, raw.Code, err)
		}
		unit, err := enums.ParseProductUnit(raw.Unit)
		if err != nil {
			return nil, fmt.Errorf("%w: item %s: %w", ErrInvalidScenario, raw.Code, err)
		}
		item, err := catalog.Validate(catalog.Item{
			Code:        raw.Code,
			Description: raw.Description,
			Unit:        unit,
			UnitPrice:   price,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s Step) action() (string, error) {
	var set []string
	mark := func(name string, present bool) {
		if present {
			set = append(set, name)
		}
	}
	mark("key", s.Key != "")
	mark("scan", s.Scan != "")
	mark("type", s.Type != "")
	mark("quantity", s.Quantity != nil)
	mark("decrement", s.Decrement != "")
	mark("void", s.Void != "")
	mark("note", s.Note != nil)
	mark("buyer", s.Buyer != nil)
	mark("skip_buyer", s.SkipBuyer)
	mark("pay", s.Pay != "")
	mark("receipt", s.Receipt != nil)

	switch len(set) {
	case 0:
		return "", errors.New("no action")
	case 1:
		return set[0], nil
	default:
		return "", fmt.Errorf("more than one action: %s", strings.Join(set, ", "))
	}
}
