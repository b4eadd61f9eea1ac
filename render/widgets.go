package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/rgonek/lessonmd/content"
	"github.com/rgonek/lessonmd/widget"
)

var widgetTemplates = template.Must(template.New("widgets").Parse(`
{{- define "display" -}}
<div class="{{.Class}}" data-widget="{{.Type}}" data-segment="{{.Segment}}">
{{.Display}}
</div>
{{end -}}

{{- define "authoring" -}}
<div class="{{.Class}} {{.Class}}-editable" data-widget="{{.Type}}" data-segment="{{.Segment}}" draggable="true">
<div class="{{.Class}}-toolbar">
<span class="{{.Class}}-handle" title="Drag to move" aria-hidden="true">&#x2630;</span>
<span class="{{.Class}}-label">{{if .Icon}}{{.Icon}} {{end}}{{.Label}}</span>
<form class="{{.Class}}-delete" method="post" action="{{.Action}}">
<input type="hidden" name="` + widget.SegmentField + `" value="{{.Segment}}">
<input type="hidden" name="` + widget.OpField + `" value="` + widget.OpDelete + `">
<button type="submit">Delete</button>
</form>
</div>
<div class="{{.Class}}-preview">
{{.Display}}
</div>
<details class="{{.Class}}-edit">
<summary>Edit</summary>
{{.Form}}
</details>
</div>
{{end -}}
`))

type widgetView struct {
	Class   string
	Type    string
	Label   string
	Icon    string
	Segment int
	Action  string
	Display template.HTML
	Form    template.HTML
}

func (r *Renderer) renderWidget(index int, w *content.Widget, authoring bool) (template.HTML, error) {
	desc, err := r.registry.Describe(w.Type)
	if err != nil {
		return "", err
	}
	display, err := desc.Display(w.Props.Clone())
	if err != nil {
		return "", fmt.Errorf("display %s: %w", w.Type, err)
	}

	view := widgetView{
		Class:   r.config.WidgetClass,
		Type:    w.Type,
		Label:   desc.DisplayLabel(),
		Icon:    desc.Icon,
		Segment: index,
		Action:  r.config.EditAction,
		Display: display,
	}

	name := "display"
	if authoring {
		name = "authoring"
		form, err := desc.RenderEdit(w.Props.Clone(), widget.EditTarget{Segment: index, Action: r.config.EditAction})
		if err != nil {
			return "", fmt.Errorf("edit form %s: %w", w.Type, err)
		}
		view.Form = form
	}

	var buf bytes.Buffer
	if err := widgetTemplates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", fmt.Errorf("render %s: %w", w.Type, err)
	}
	return template.HTML(buf.String()), nil
}
