package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Decode reads a snapshot in the given format: json, yaml or html.
func Decode(r io.Reader, format string) (*Node, error) {
	n := &Node{}
	switch strings.ToLower(format) {
	case "json":
		d := json.NewDecoder(r)
		d.DisallowUnknownFields()
		if err := d.Decode(n); err != nil {
			return nil, fmt.Errorf("failed to decode json snapshot: %w", err)
		}
		return n, nil
	case "yaml", "yml":
		d := yaml.NewDecoder(r)
		d.KnownFields(true)
		if err := d.Decode(n); err != nil {
			return nil, fmt.Errorf("failed to decode yaml snapshot: %w", err)
		}
		return n, nil
	case "html", "htm":
		doc, err := html.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html snapshot: %w", err)
		}
		return FromHTML(doc)
	default:
		return nil, fmt.Errorf("unknown snapshot format: %q", format)
	}
}

func DecodeFile(path string) (*Node, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(bs), strings.TrimPrefix(filepath.Ext(path), "."))
}

// FromHTML converts markup into nodes. Document nodes are unwrapped to the single
// element child of <body> (or <body> itself). The node type is taken from data-type,
// falling back to the tag name; data-states holds space separated state flags and
// data-cell ("row,col[,column]", the value defaults to the text attribute),
// data-value, data-row, data-values (json array of row values), data-column
// ("index[,name]"), data-item
// ("a/b/c", trailing "/" marks a leaf) and data-tab ("index[,title]") fill the side channels.
func FromHTML(n *html.Node) (*Node, error) {
	if n.Type == html.DocumentNode {
		body := findElement(n, "body")
		if body == nil {
			return nil, fmt.Errorf("html snapshot without body")
		}
		n = body
		if cs := elementChildren(body); len(cs) == 1 {
			n = cs[0]
		}
	}
	if n.Type != html.ElementNode {
		return nil, fmt.Errorf("expected element node, got %d", n.Type)
	}
	node := &Node{Type: n.Data}
	for _, a := range n.Attr {
		if err := fromHTMLAttr(node, a.Key, a.Val); err != nil {
			return nil, fmt.Errorf("%s: %w", n.Data, err)
		}
	}
	for _, c := range elementChildren(n) {
		child, err := FromHTML(c)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func fromHTMLAttr(n *Node, k, v string) (err error) {
	switch k {
	case "data-type":
		n.Type = v
	case "data-states":
		n.States = strings.Fields(v)
	case "data-cell":
		parts, c := strings.SplitN(v, ",", 3), n.Cell
		if c == nil {
			c = &Cell{Value: n.Attrs["text"]}
		}
		if len(parts) < 2 {
			return fmt.Errorf("bad data-cell %q", v)
		} else if c.Row, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
			return fmt.Errorf("bad data-cell %q: %w", v, err)
		} else if c.Col, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
			return fmt.Errorf("bad data-cell %q: %w", v, err)
		}
		if len(parts) == 3 {
			c.Column = parts[2]
		}
		n.Cell = c
	case "data-value":
		if n.Cell == nil {
			n.Cell = &Cell{}
		}
		n.Cell.Value = v
	case "data-row":
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("bad data-row %q: %w", v, err)
		}
		if n.Row == nil {
			n.Row = &Row{}
		}
		n.Row.Index = i
	case "data-values":
		if n.Row == nil {
			n.Row = &Row{}
		}
		if err := json.Unmarshal([]byte(v), &n.Row.Values); err != nil {
			return fmt.Errorf("bad data-values %q: %w", v, err)
		}
	case "data-column":
		index, name, _ := strings.Cut(v, ",")
		i, err := strconv.Atoi(index)
		if err != nil {
			return fmt.Errorf("bad data-column %q: %w", v, err)
		}
		n.Column = &Column{Index: i, Name: name}
	case "data-item":
		leaf := strings.HasSuffix(v, "/")
		n.Item = &Item{Path: strings.Split(strings.TrimSuffix(v, "/"), "/"), Leaf: leaf}
	case "data-tab":
		index, title, _ := strings.Cut(v, ",")
		i, err := strconv.Atoi(index)
		if err != nil {
			return fmt.Errorf("bad data-tab %q: %w", v, err)
		}
		n.Tab = &Tab{Index: i, Title: title}
	default:
		if n.Attrs == nil {
			n.Attrs = map[string]string{}
		}
		n.Attrs[k] = v
		if k == "text" && n.Cell != nil && n.Cell.Value == "" {
			n.Cell.Value = v
		}
	}
	return nil
}

// ToHTML renders t as markup that FromHTML reads back. Tags are the lower cased simple
// type names so that css libraries operating on html see the same element names.
func ToHTML(t *Tree) *html.Node {
	return toHTML(t, t.Root())
}

func toHTML(t *Tree, id ID) *html.Node {
	n := t.Node(id)
	el := &html.Node{Type: html.ElementNode, Data: strings.ToLower(t.SimpleType(id))}
	if el.Data == "" {
		el.Data = "node"
	}
	el.Attr = append(el.Attr, html.Attribute{Key: "data-type", Val: n.Type})
	keys := maps.Keys(n.Attrs)
	slices.Sort(keys)
	for _, k := range keys {
		el.Attr = append(el.Attr, html.Attribute{Key: k, Val: n.Attrs[k]})
	}
	if len(n.States) != 0 {
		el.Attr = append(el.Attr, html.Attribute{Key: "data-states", Val: strings.Join(n.States, " ")})
	}
	if c := n.Cell; c != nil {
		v := fmt.Sprintf("%d,%d", c.Row, c.Col)
		if c.Column != "" {
			v += "," + c.Column
		}
		el.Attr = append(el.Attr, html.Attribute{Key: "data-cell", Val: v})
		if c.Value != "" {
			el.Attr = append(el.Attr, html.Attribute{Key: "data-value", Val: c.Value})
		}
	}
	if r := n.Row; r != nil {
		el.Attr = append(el.Attr, html.Attribute{Key: "data-row", Val: strconv.Itoa(r.Index)})
		if len(r.Values) != 0 {
			bs, _ := json.Marshal(r.Values)
			el.Attr = append(el.Attr, html.Attribute{Key: "data-values", Val: string(bs)})
		}
	}
	if c := n.Column; c != nil {
		el.Attr = append(el.Attr, html.Attribute{Key: "data-column", Val: strconv.Itoa(c.Index) + "," + c.Name})
	}
	if i := n.Item; i != nil {
		v := i.String()
		if i.Leaf {
			v += "/"
		}
		el.Attr = append(el.Attr, html.Attribute{Key: "data-item", Val: v})
	}
	if tab := n.Tab; tab != nil {
		el.Attr = append(el.Attr, html.Attribute{Key: "data-tab", Val: strconv.Itoa(tab.Index) + "," + tab.Title})
	}
	for _, c := range t.Children(id) {
		el.AppendChild(toHTML(t, c))
	}
	return el
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if n := findElement(c, tag); n != nil {
			return n
		}
	}
	return nil
}

func elementChildren(n *html.Node) (out []*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}
