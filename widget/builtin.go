package widget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// DefaultAngle is the angle AngleVisualizer starts at when initialAngle is absent.
const DefaultAngle = 45.0

var builtinTemplates = template.Must(template.New("builtin").Funcs(template.FuncMap{
	"num": FormatNumber,
}).Parse(`
{{- define "Quiz" -}}
<div class="widget widget-quiz" data-widget="Quiz"><ol class="quiz-questions">
{{- range $i, $q := . -}}
<li class="quiz-question" data-question="{{$i}}" data-correct="{{$q.Correct}}"><p>{{$q.Question}}</p><ul class="quiz-options">
{{- range $j, $opt := $q.Options}}<li data-option="{{$j}}">{{$opt}}</li>{{end -}}
</ul></li>
{{- end -}}
</ol></div>
{{- end -}}

{{- define "VideoEmbed" -}}
<figure class="widget widget-video" data-widget="VideoEmbed"><div class="video-frame"><iframe src="{{.Src}}" title="{{.Title}}" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe></div><figcaption>{{.Title}}</figcaption></figure>
{{- end -}}

{{- define "MathPuzzle" -}}
<div class="widget widget-math-puzzle" data-widget="MathPuzzle" data-answer="{{num .Answer}}"><p class="puzzle-problem">{{.Problem}}</p>
{{- if .Hint}}<details class="puzzle-hint"><summary>Hint</summary><p>{{.Hint}}</p></details>{{end -}}
</div>
{{- end -}}

{{- define "PhysicsSimulator" -}}
<div class="widget widget-physics" data-widget="PhysicsSimulator" data-simulation="{{.Type}}">
{{- if .Title}}<h4>{{.Title}}</h4>{{end -}}
<canvas class="physics-canvas" width="400" height="300"></canvas></div>
{{- end -}}

{{- define "PeriodicTableVisualizer" -}}
<div class="widget widget-periodic-table" data-widget="PeriodicTableVisualizer"><ol class="periodic-grid">
{{- range .Elements}}<li class="element element-{{.Category}}{{if .Highlighted}} is-highlighted{{end}}" data-number="{{.Number}}"><abbr title="{{.Name}}">{{.Symbol}}</abbr></li>{{end -}}
</ol></div>
{{- end -}}

{{- define "AngleVisualizer" -}}
<div class="widget widget-angle" data-widget="AngleVisualizer" data-angle="{{num .Angle}}"><svg viewBox="0 0 400 400" width="400" height="400"><line x1="200" y1="200" x2="320" y2="200"></line><line x1="200" y1="200" x2="{{num .EndX}}" y2="{{num .EndY}}"></line></svg><p class="angle-readout">{{num .Angle}}° ({{.Type}})</p></div>
{{- end -}}

{{- define "generic" -}}
<div class="widget" data-widget="{{.Name}}" data-props="{{.JSON}}"></div>
{{- end -}}
`))

// Builtin returns a registry holding the lesson widgets shipped with the
// platform, in picker order.
func Builtin() *Registry {
	r, err := NewRegistry(BuiltinDescriptors()...)
	if err != nil {
		panic(fmt.Sprintf("widget: builtin registry: %v", err))
	}
	return r
}

// BuiltinDescriptors returns the builtin descriptors in picker order.
func BuiltinDescriptors() []Descriptor {
	return []Descriptor{
		{
			Name:        "Quiz",
			Label:       "Quiz",
			Description: "Interactive quiz with multiple questions",
			Icon:        "🎯",
			Properties: []Property{
				{Name: "questions", Kind: KindExpression, Required: true, Label: "Quiz Questions",
					Help: `JSON array of {"question", "options", "correctAnswer"} objects`},
			},
			Display: displayQuiz,
		},
		{
			Name:        "VideoEmbed",
			Label:       "Video Embed",
			Description: "Embed YouTube or other videos",
			Icon:        "🎥",
			Properties: []Property{
				{Name: "url", Kind: KindString, Required: true, Label: "Video URL"},
				{Name: "title", Kind: KindString, Required: true, Label: "Video Title"},
			},
			Display: displayVideoEmbed,
		},
		{
			Name:        "MathPuzzle",
			Label:       "Math Puzzle",
			Description: "Interactive math problem solver",
			Icon:        "🧮",
			Properties: []Property{
				{Name: "problem", Kind: KindString, Required: true, Label: "Problem"},
				{Name: "answer", Kind: KindNumber, Required: true, Label: "Answer"},
				{Name: "hint", Kind: KindString, Label: "Hint"},
			},
			Display: displayMathPuzzle,
		},
		{
			Name:        "PhysicsSimulator",
			Label:       "Physics Simulator",
			Description: "Interactive physics simulation",
			Icon:        "⚛️",
			Properties: []Property{
				{Name: "type", Kind: KindString, Required: true, Label: "Simulation Type",
					Options: []string{"velocity", "force", "pendulum", "projectile", "collision"}},
				{Name: "title", Kind: KindString, Label: "Title"},
			},
			Display: displayPhysicsSimulator,
		},
		{
			Name:        "PeriodicTableVisualizer",
			Label:       "Periodic Table",
			Description: "Interactive periodic table of elements",
			Icon:        "🧪",
			Properties: []Property{
				{Name: "highlightElement", Kind: KindString, Label: "Highlight Element"},
			},
			Display: displayPeriodicTable,
		},
		{
			Name:        "AngleVisualizer",
			Label:       "Angle Visualizer",
			Description: "Interactive angle measurement tool",
			Icon:        "📐",
			Properties: []Property{
				{Name: "initialAngle", Kind: KindNumber, Label: "Initial Angle (degrees)"},
			},
			Display: displayAngleVisualizer,
		},
	}
}

type quizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
	LegacyCorrect *int     `json:"correct,omitempty"`
}

type quizView struct {
	Question string
	Options  []string
	Correct  int
}

// quizQuestions reinterprets a decoded expression as quiz questions. The
// insert dialog of older editors wrote "correct" instead of "correctAnswer".
func quizQuestions(value any) ([]quizView, error) {
	if raw, ok := value.(RawExpression); ok {
		return nil, fmt.Errorf("questions is not structured data: %.40q", string(raw))
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}
	var questions []quizQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("questions must be an array of question objects: %w", err)
	}

	views := make([]quizView, 0, len(questions))
	for i, q := range questions {
		correct := 0
		switch {
		case q.CorrectAnswer != nil:
			correct = *q.CorrectAnswer
		case q.LegacyCorrect != nil:
			correct = *q.LegacyCorrect
		}
		if len(q.Options) > 0 && (correct < 0 || correct >= len(q.Options)) {
			return nil, fmt.Errorf("question %d: correct answer %d out of range", i+1, correct)
		}
		views = append(views, quizView{Question: q.Question, Options: q.Options, Correct: correct})
	}
	return views, nil
}

func displayQuiz(props Props) (template.HTML, error) {
	questions, err := quizQuestions(props["questions"])
	if err != nil {
		return "", err
	}
	return execute("Quiz", questions)
}

func displayVideoEmbed(props Props) (template.HTML, error) {
	rawURL, _ := props["url"].(string)
	title, _ := props["title"].(string)
	if strings.TrimSpace(rawURL) == "" {
		return "", errors.New("video url is empty")
	}
	return execute("VideoEmbed", struct {
		Src   string
		Title string
	}{Src: EmbedURL(rawURL), Title: title})
}

// EmbedURL rewrites YouTube watch and short links to their embeddable form.
// Other URLs are returned unchanged.
func EmbedURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			if id := u.Query().Get("v"); id != "" {
				return "https://www.youtube.com/embed/" + url.PathEscape(id)
			}
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(id)
		}
	}
	return raw
}

func displayMathPuzzle(props Props) (template.HTML, error) {
	problem, _ := props["problem"].(string)
	answer, ok := AsNumber(props["answer"])
	if !ok {
		return "", fmt.Errorf("answer %v is not a number", props["answer"])
	}
	hint, _ := props["hint"].(string)
	return execute("MathPuzzle", struct {
		Problem string
		Answer  float64
		Hint    string
	}{Problem: problem, Answer: answer, Hint: hint})
}

func displayPhysicsSimulator(props Props) (template.HTML, error) {
	simType, _ := props["type"].(string)
	title, _ := props["title"].(string)
	return execute("PhysicsSimulator", struct {
		Type  string
		Title string
	}{Type: simType, Title: title})
}

type element struct {
	Symbol   string
	Name     string
	Number   int
	Category string
}

var periodicElements = []element{
	{"H", "Hydrogen", 1, "nonmetal"},
	{"He", "Helium", 2, "noble"},
	{"Li", "Lithium", 3, "alkali"},
	{"Be", "Beryllium", 4, "alkaline"},
	{"B", "Boron", 5, "metalloid"},
	{"C", "Carbon", 6, "nonmetal"},
	{"N", "Nitrogen", 7, "nonmetal"},
	{"O", "Oxygen", 8, "nonmetal"},
	{"F", "Fluorine", 9, "halogen"},
	{"Ne", "Neon", 10, "noble"},
}

func displayPeriodicTable(props Props) (template.HTML, error) {
	highlight, _ := props["highlightElement"].(string)
	highlight = strings.TrimSpace(highlight)

	type cell struct {
		Symbol, Name, Category string
		Number                 int
		Highlighted            bool
	}
	cells := make([]cell, 0, len(periodicElements))
	for _, el := range periodicElements {
		hit := highlight != "" && (strings.EqualFold(el.Symbol, highlight) || strings.EqualFold(el.Name, highlight))
		cells = append(cells, cell{
			Symbol:      el.Symbol,
			Name:        el.Name,
			Category:    el.Category,
			Number:      el.Number,
			Highlighted: hit,
		})
	}
	return execute("PeriodicTableVisualizer", struct{ Elements []cell }{Elements: cells})
}

// AngleType classifies an angle in degrees.
func AngleType(deg float64) string {
	switch {
	case deg < 90:
		return "acute"
	case deg == 90:
		return "right"
	case deg < 180:
		return "obtuse"
	case deg == 180:
		return "straight"
	default:
		return "reflex"
	}
}

func displayAngleVisualizer(props Props) (template.HTML, error) {
	angle := DefaultAngle
	if v, ok := props["initialAngle"]; ok {
		n, ok := AsNumber(v)
		if !ok {
			return "", fmt.Errorf("initialAngle %v is not a number", v)
		}
		angle = n
	}

	const cx, cy, radius = 200.0, 200.0, 120.0
	end := rotate(cx, cy, radius, angle)
	return execute("AngleVisualizer", struct {
		Angle      float64
		EndX, EndY float64
		Type       string
	}{Angle: angle, EndX: end[0], EndY: end[1], Type: AngleType(angle)})
}

// GenericDisplay renders any property bag as a data-carrying placeholder
// element for client-side hydration. It backs data-defined widget types.
func GenericDisplay(name string) DisplayFunc {
	return func(props Props) (template.HTML, error) {
		data, err := json.Marshal(props)
		if err != nil {
			return "", fmt.Errorf("failed to marshal %s props: %w", name, err)
		}
		return execute("generic", struct {
			Name string
			JSON string
		}{Name: name, JSON: string(data)})
	}
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := builtinTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
