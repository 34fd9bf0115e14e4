// Package langdata loads the embedded language packs and tone profiles that drive the metric
// ensemble and the transformation stages.
package langdata

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/prose-humanizer/internal/textutil"
)

//go:embed data/*.yaml
var bundled embed.FS

// UniversalCode is the code of the fallback pack used for unsupported languages.
const UniversalCode = "xx"

// Splitter describes a clause boundary where a long sentence may be cut in two.
// Lead, when set, opens the second sentence.
type Splitter struct {
	Separator string `yaml:"separator"`
	Lead      string `yaml:"lead"`
}

// packFile is the on-disk shape of a language pack.
type packFile struct {
	Code          string              `yaml:"code"`
	Name          string              `yaml:"name"`
	Deep          bool                `yaml:"deep"`
	Stopwords     []string            `yaml:"stopwords"`
	Connectors    []string            `yaml:"connectors"`
	Formulaic     []string            `yaml:"formulaic"`
	Openers       map[string][]string `yaml:"openers"`
	Phrases       map[string][]string `yaml:"phrases"`
	Paraphrases   map[string][]string `yaml:"paraphrases"`
	Synonyms      map[string][]string `yaml:"synonyms"`
	Contractions  map[string]string   `yaml:"contractions"`
	Splitters     []Splitter          `yaml:"splitters"`
	MergeJoiner   string              `yaml:"merge_joiner"`
	Interjections []string            `yaml:"interjections"`
	Hedges        []string            `yaml:"hedges"`
}

// Pack is a compiled, read-only language pack. It is safe for concurrent use.
type Pack struct {
	file packFile

	stopwords    map[string]bool
	openers      map[string][]string
	phrases      map[string][]string
	paraphrases  map[string][]string
	synonyms     map[string][]string
	contractions map[string]string

	connectorMatcher   *textutil.PhraseMatcher
	formulaicMatcher   *textutil.PhraseMatcher
	openerMatcher      *textutil.PhraseMatcher
	phraseMatcher      *textutil.PhraseMatcher
	paraphraseMatcher  *textutil.PhraseMatcher
	contractionMatcher *textutil.PhraseMatcher
}

// ParsePack decodes and compiles a language pack from YAML.
func ParsePack(data []byte) (*Pack, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("langdata: pack payload is empty")
	}
	var f packFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("langdata: decode pack: %w", err)
	}
	if strings.TrimSpace(f.Code) == "" {
		return nil, fmt.Errorf("langdata: pack has no code")
	}

	p := &Pack{
		file:         f,
		stopwords:    make(map[string]bool, len(f.Stopwords)),
		openers:      lowerKeys(f.Openers),
		phrases:      lowerKeys(f.Phrases),
		paraphrases:  lowerKeys(f.Paraphrases),
		synonyms:     lowerKeys(f.Synonyms),
		contractions: make(map[string]string, len(f.Contractions)),
	}
	for _, w := range f.Stopwords {
		p.stopwords[strings.ToLower(w)] = true
	}
	for k, v := range f.Contractions {
		p.contractions[strings.ToLower(k)] = v
	}

	p.connectorMatcher = textutil.NewPhraseMatcher(f.Connectors)
	p.formulaicMatcher = textutil.NewPhraseMatcher(f.Formulaic)
	p.openerMatcher = textutil.NewPhraseMatcher(keys(p.openers))
	p.phraseMatcher = textutil.NewPhraseMatcher(keys(p.phrases))
	p.paraphraseMatcher = textutil.NewPhraseMatcher(keys(p.paraphrases))
	p.contractionMatcher = textutil.NewPhraseMatcher(stringKeys(p.contractions))
	return p, nil
}

func lowerKeys(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// keys returns map keys sorted, so matcher construction does not depend on map order.
func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func stringKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Code returns the pack's language code.
func (p *Pack) Code() string { return p.file.Code }

// Name returns the human-readable language name.
func (p *Pack) Name() string { return p.file.Name }

// Deep reports whether the pack supports the full stage set rather than the universal stages only.
func (p *Pack) Deep() bool { return p.file.Deep }

// IsStopword reports whether the lowercase word is a function word.
func (p *Pack) IsStopword(word string) bool { return p.stopwords[word] }

// Connectors matches discourse connectors.
func (p *Pack) Connectors() *textutil.PhraseMatcher { return p.connectorMatcher }

// Formulaic matches stock phrases and buzzwords typical of generated text.
func (p *Pack) Formulaic() *textutil.PhraseMatcher { return p.formulaicMatcher }

// Openers matches sentence-initial connectors that the deformalize stage rewrites.
func (p *Pack) Openers() *textutil.PhraseMatcher { return p.openerMatcher }

// Phrases matches formal set phrases.
func (p *Pack) Phrases() *textutil.PhraseMatcher { return p.phraseMatcher }

// Paraphrases matches stiff vocabulary with plainer alternatives.
func (p *Pack) Paraphrases() *textutil.PhraseMatcher { return p.paraphraseMatcher }

// Contractions matches expandable word pairs.
func (p *Pack) Contractions() *textutil.PhraseMatcher { return p.contractionMatcher }

// OpenerReplacements returns the alternatives for a lowercase opener.
func (p *Pack) OpenerReplacements(opener string) []string { return p.openers[opener] }

// PhraseReplacements returns the alternatives for a lowercase set phrase.
func (p *Pack) PhraseReplacements(phrase string) []string { return p.phrases[phrase] }

// ParaphraseReplacements returns the alternatives for a lowercase word or phrase.
func (p *Pack) ParaphraseReplacements(phrase string) []string { return p.paraphrases[phrase] }

// Synonyms returns same-meaning alternatives for a lowercase word.
func (p *Pack) Synonyms(word string) []string { return p.synonyms[word] }

// Contraction returns the contracted form of a lowercase word pair.
func (p *Pack) Contraction(pair string) (string, bool) {
	c, ok := p.contractions[pair]
	return c, ok
}

// Splitters returns the clause boundaries usable for sentence splitting.
func (p *Pack) Splitters() []Splitter { return p.file.Splitters }

// MergeJoiner returns the text used to join two short sentences.
func (p *Pack) MergeJoiner() string { return p.file.MergeJoiner }

// Interjections returns casual asides.
func (p *Pack) Interjections() []string { return p.file.Interjections }

// Hedges returns softening words.
func (p *Pack) Hedges() []string { return p.file.Hedges }

// Registry holds every bundled pack and profile.
type Registry struct {
	packs        map[string]*Pack
	universal    *Pack
	profiles     map[string]Profile
	profileOrder []string
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the embedded data. The embedded files ship with the
// binary, so a load failure is a build defect and panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultRegistry
}

// Load parses every embedded pack and the profile table.
func Load() (*Registry, error) {
	entries, err := bundled.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("langdata: list embedded data: %w", err)
	}

	r := &Registry{packs: make(map[string]*Pack)}
	for _, entry := range entries {
		name := entry.Name()
		if name == "profiles.yaml" {
			continue
		}
		data, err := bundled.ReadFile(path.Join("data", name))
		if err != nil {
			return nil, fmt.Errorf("langdata: read %s: %w", name, err)
		}
		pack, err := ParsePack(data)
		if err != nil {
			return nil, fmt.Errorf("langdata: %s: %w", name, err)
		}
		if pack.Code() == UniversalCode {
			r.universal = pack
			continue
		}
		r.packs[pack.Code()] = pack
	}
	if r.universal == nil {
		return nil, fmt.Errorf("langdata: universal pack missing")
	}

	data, err := bundled.ReadFile("data/profiles.yaml")
	if err != nil {
		return nil, fmt.Errorf("langdata: read profiles: %w", err)
	}
	profiles, err := ParseProfiles(data)
	if err != nil {
		return nil, err
	}
	r.profiles = make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		r.profiles[p.Name] = p
		r.profileOrder = append(r.profileOrder, p.Name)
	}
	return r, nil
}

// Pack returns the pack for a language code. Unknown codes get the universal pack and false.
func (r *Registry) Pack(code string) (*Pack, bool) {
	if p, ok := r.packs[strings.ToLower(code)]; ok {
		return p, true
	}
	return r.universal, false
}

// Resolve picks the pack for a configured language, detecting it from text when language is "auto"
// or empty.
func (r *Registry) Resolve(language, text string) *Pack {
	if language == "" || language == "auto" {
		language = DetectLanguage(text)
	}
	p, _ := r.Pack(language)
	return p
}

// Languages returns the codes of the deep packs, sorted.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.packs))
	for code := range r.packs {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Profile returns the named profile, or the default "web" profile and false when unknown.
func (r *Registry) Profile(name string) (Profile, bool) {
	if p, ok := r.profiles[strings.ToLower(name)]; ok {
		return p, true
	}
	return r.profiles["web"], false
}

// Profiles returns all profiles in declaration order.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.profileOrder))
	for _, name := range r.profileOrder {
		out = append(out, r.profiles[name])
	}
	return out
}

// DetectLanguage returns "ru" when Cyrillic letters outnumber Latin ones and "en" otherwise.
func DetectLanguage(text string) string {
	var cyrillic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	if cyrillic > latin {
		return "ru"
	}
	return "en"
}
