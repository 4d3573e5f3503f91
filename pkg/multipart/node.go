package multipart

import (
	"mime"
	"strings"
)

// Node: узел разобранного multipart-дерева: *Part, *FilePart или *Multipart.
type Node interface {
	isNode()
}

// Part: часть, полностью прочитанная в память.
type Part struct {
	Header Header
	Body   []byte
}

// Multipart: вложенный multipart-контейнер. Его Header обязан содержать
// content-type вида multipart/* с параметром boundary.
type Multipart struct {
	Header Header
	Nodes  []Node
}

func (*Part) isNode()      {}
func (*FilePart) isNode()  {}
func (*Multipart) isNode() {}

// ContentType: тип содержимого части, если он указан и разбирается.
func (p *Part) ContentType() (MediaType, bool) {
	return contentTypeOf(p.Header)
}

// Name: параметр name из content-disposition.
func (p *Part) Name() string { return dispositionName(p.Header) }

func (m *Multipart) Name() string { return dispositionName(m.Header) }

// Boundary: собственная граница контейнера.
func (m *Multipart) Boundary() (string, error) { return Boundary(m.Header) }

// MediaType: разобранное значение content-type.
type MediaType struct {
	Type    string
	Subtype string
	Params  map[string]string
}

// ParseMediaType разбирает значение заголовка как MIME-тип.
func ParseMediaType(v string) (MediaType, error) {
	mt, params, err := mime.ParseMediaType(v)
	if err != nil {
		return MediaType{}, err
	}
	typ, sub, _ := strings.Cut(mt, "/")
	return MediaType{Type: typ, Subtype: sub, Params: params}, nil
}

// Essence: "type/subtype" без параметров.
func (m MediaType) Essence() string {
	if m.Subtype == "" {
		return m.Type
	}
	return m.Type + "/" + m.Subtype
}

func (m MediaType) String() string {
	return mime.FormatMediaType(m.Essence(), m.Params)
}

// contentTypeOf: best-effort: любая ошибка означает отсутствие типа.
func contentTypeOf(h Header) (MediaType, bool) {
	v, ok, err := h.Text("content-type")
	if !ok || err != nil {
		return MediaType{}, false
	}
	mt, err := ParseMediaType(v)
	if err != nil {
		return MediaType{}, false
	}
	return mt, true
}

func dispositionName(h Header) string {
	v, ok, err := h.Text("content-disposition")
	if !ok || err != nil {
		return ""
	}
	if _, params, err := mime.ParseMediaType(v); err == nil {
		return params["name"]
	}
	return ""
}

// Walk обходит дерево в глубину; fn вызывается для контейнера до его детей.
func Walk(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		if m, ok := n.(*Multipart); ok {
			Walk(m.Nodes, fn)
		}
	}
}

// CloseNodes освобождает все принадлежащие дереву временные файлы.
func CloseNodes(nodes []Node) {
	Walk(nodes, func(n Node) {
		if fp, ok := n.(*FilePart); ok {
			_ = fp.Close()
		}
	})
}
