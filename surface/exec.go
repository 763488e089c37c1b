package surface

import "golang.org/x/net/html/atom"

// Command names a formatting primitive.
type Command string

const (
	Bold                Command = "bold"
	Italic              Command = "italic"
	Underline           Command = "underline"
	Strikethrough       Command = "strikethrough"
	ForeColor           Command = "foreColor"
	HiliteColor         Command = "hiliteColor"
	FontName            Command = "fontName"
	FontSize            Command = "fontSize"
	FormatBlock         Command = "formatBlock"
	RemoveFormat        Command = "removeFormat"
	Indent              Command = "indent"
	Outdent             Command = "outdent"
	InsertOrderedList   Command = "insertOrderedList"
	InsertUnorderedList Command = "insertUnorderedList"
	JustifyLeft         Command = "justifyLeft"
	JustifyCenter       Command = "justifyCenter"
	JustifyRight        Command = "justifyRight"
	JustifyFull         Command = "justifyFull"
	InsertHTML          Command = "insertHTML"
	InsertImage         Command = "insertImage"
	CreateLink          Command = "createLink"
)

// Dialect selects how formatting is written into the document.
type Dialect uint8

const (
	// Markup writes semantic elements such as <b> and <font color>.
	Markup Dialect = iota
	// Styled writes <span style> elements.
	Styled
)

func (d Dialect) String() string {
	if d == Styled {
		return "styled"
	}
	return "markup"
}

// Exec runs cmd on the current selection.
func (s *Surface) Exec(cmd Command, value string, d Dialect) error {
	if _, ok := s.Selection(); !ok {
		return ErrNoSelection
	}
	s.inserted = nil
	var err error
	switch cmd {
	case Bold, Italic, Underline, Strikethrough, ForeColor, HiliteColor, FontName, FontSize:
		err = s.execInline(cmd, value, d)
	case RemoveFormat:
		s.removeFormatting()
	case FormatBlock:
		err = s.formatBlock(value)
	case Indent:
		s.indent(d)
	case Outdent:
		s.outdent()
	case InsertOrderedList:
		s.toggleList("ol")
	case InsertUnorderedList:
		s.toggleList("ul")
	case JustifyLeft, JustifyCenter, JustifyRight, JustifyFull:
		s.justify(cmd, d)
	case InsertHTML:
		return s.InsertHTML(value)
	case InsertImage:
		return s.insertImage(value)
	case CreateLink:
		return s.createLink(value)
	default:
		return ErrUnsupported
	}
	if err != nil {
		return err
	}
	s.bump()
	return nil
}

// Queryable reports whether QueryState answers for cmd.
func Queryable(cmd Command) bool {
	switch cmd {
	case Bold, Italic, Underline, Strikethrough,
		InsertOrderedList, InsertUnorderedList,
		JustifyLeft, JustifyCenter, JustifyRight, JustifyFull:
		return true
	}
	return false
}

// QueryState reports whether cmd is active for the current selection.
// Commands without a state report false.
func (s *Surface) QueryState(cmd Command) bool {
	switch cmd {
	case Bold, Italic, Underline, Strikethrough:
		on, _ := s.queryInline(cmd, inlineStyles[cmd])
		return on
	case InsertOrderedList:
		return s.listState(atom.Ol)
	case InsertUnorderedList:
		return s.listState(atom.Ul)
	case JustifyLeft, JustifyCenter, JustifyRight, JustifyFull:
		return s.justifyState(cmd)
	}
	return false
}

// QueryValue returns the current value of a value command: a font face,
// a legacy font size 1..7, a color, or a block tag. Empty means inherited.
func (s *Surface) QueryValue(cmd Command) string {
	switch cmd {
	case ForeColor, HiliteColor, FontName:
		_, v := s.queryInline(cmd, inlineStyles[cmd])
		return v
	case FontSize:
		_, v := s.queryInline(cmd, inlineStyles[cmd])
		return legacyFontSize(v)
	case FormatBlock:
		return s.blockFormat()
	}
	return ""
}
