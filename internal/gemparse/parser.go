package gemparse

import (
	"strings"

	"github.com/navikt/gemlint/internal/gemtoken"
)

// DiagnosticSink receives a human-readable message whenever the parser
// meets a dynamic construct it cannot resolve (string interpolation, a
// send() call with a non-literal method symbol). A panic raised inside the
// sink is recovered and ignored, so it never aborts a parse; a nil sink is
// replaced with a no-op.
type DiagnosticSink func(message string)

// Parse tokenizes and parses src, using a no-op diagnostic sink.
func Parse(src []byte) (*ParseOutput, error) {
	return ParseWithSink(src, nil)
}

// ParseWithSink tokenizes and parses src, invoking sink for every
// unresolvable dynamic construct encountered along the way.
func ParseWithSink(src []byte, sink DiagnosticSink) (*ParseOutput, error) {
	tokens, err := gemtoken.Tokenize(src)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = func(string) {}
	}
	userSink := sink
	sink = func(message string) {
		defer func() { _ = recover() }()
		userSink(message)
	}
	p := &parser{tokens: tokens, sink: sink, out: newParseOutput()}
	if err := p.parseStatements(blockCtx{}, false); err != nil {
		return nil, err
	}
	return p.out, nil
}

// blockCtx carries the groups/platforms active from an enclosing
// group/target/platforms block. A nested block replaces whichever half
// it names and inherits the other from its enclosing context.
type blockCtx struct {
	groups    []string
	platforms []string
}

type parser struct {
	tokens []gemtoken.Token
	pos    int
	sink   DiagnosticSink
	depth  int
	out    *ParseOutput
}

func (p *parser) cur() gemtoken.Token { return p.tokens[p.pos] }

func (p *parser) peekAt(n int) gemtoken.Token {
	idx := p.pos + n
	if idx < 0 || idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF sentinel
	}
	return p.tokens[idx]
}

func (p *parser) advance() gemtoken.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) atEOF() bool { return p.cur().Kind == gemtoken.EndOfFile }

// discardLine consumes tokens through and including the next NewLine (or
// through EOF, whichever comes first). This is how the parser "recovers"
// from anything it does not recognize.
func (p *parser) discardLine() {
	for !p.atEOF() && p.cur().Kind != gemtoken.NewLine {
		p.advance()
	}
	if p.cur().Kind == gemtoken.NewLine {
		p.advance()
	}
}

func (p *parser) skipNewlines() {
	for p.cur().Kind == gemtoken.NewLine {
		p.advance()
	}
}

func (p *parser) enterBlock() error {
	p.depth++
	if p.depth > gemtoken.MaxNestDepth {
		p.depth--
		return p.fail(gemtoken.ErrNestingTooDeep)
	}
	return nil
}

func (p *parser) leaveBlock() { p.depth-- }

// parseStatements consumes statements until EOF or, when stopOnEnd is
// set, a matching End token (left unconsumed for the caller). A stray End
// with stopOnEnd unset (i.e. at the top level) is treated as noise and
// discarded, since the source subset this parser recognizes may sit
// inside arbitrary unrelated scripting code.
func (p *parser) parseStatements(ctx blockCtx, stopOnEnd bool) error {
	for {
		p.skipNewlines()
		if p.atEOF() {
			return nil
		}
		if p.cur().Kind == gemtoken.End {
			if stopOnEnd {
				return nil
			}
			p.advance()
			continue
		}
		if err := p.parseStatement(ctx); err != nil {
			return err
		}
	}
}

func (p *parser) parseStatement(ctx blockCtx) error {
	tok := p.cur()

	switch tok.Kind {
	case gemtoken.Identifier:
		switch tok.Text {
		case "gem", "pod":
			return p.parseGemOrPodStatement(ctx)
		case "group", "target":
			return p.parseGroupOrTargetStatement(ctx)
		case "platforms":
			return p.parsePlatformsStatement(ctx)
		case "source":
			p.discardLine()
			return nil
		default:
			if p.matchSpecPrefix() {
				return p.parseSpecConstructor()
			}
			p.discardLine()
			return nil
		}
	case gemtoken.Do:
		return p.skipBalancedBlock(gemtoken.Do)
	case gemtoken.LeftParen:
		return p.skipBalancedBlock(gemtoken.LeftParen)
	default:
		p.discardLine()
		return nil
	}
}

// --- gem/pod dependency statements ---

func (p *parser) parseGemOrPodStatement(ctx blockCtx) error {
	p.advance() // consume 'gem'/'pod'
	decl, err := p.parseDependencyDeclaration(ctx.groups, ctx.platforms)
	if err != nil {
		return err
	}
	development := containsAny(decl.Groups, "development", "test")
	if p.cur().Kind == gemtoken.If {
		decl.Groups = nil
	}
	p.discardLine()
	p.routeDeclaration(decl, development)
	return nil
}

func (p *parser) routeDeclaration(decl GemDeclaration, development bool) {
	if development {
		decl.Groups = nil
		p.out.Groups.Development = append(p.out.Groups.Development, decl)
		return
	}
	p.out.Groups.Runtime = append(p.out.Groups.Runtime, decl)
}

// parseDependencyDeclaration parses the NAME [, ARG]* portion of a
// dependency declaration. It does not touch a trailing "if" conditional
// or the rest of the line — callers own
// that, since the two dependency-routing rules (group-based vs
// method-name-based) that follow differ by call site.
func (p *parser) parseDependencyDeclaration(outerGroups, outerPlatforms []string) (GemDeclaration, error) {
	var decl GemDeclaration

	hasParen := false
	if p.cur().Kind == gemtoken.LeftParen {
		hasParen = true
		p.advance()
	}

	nameTok := p.cur()
	switch nameTok.Kind {
	case gemtoken.String, gemtoken.Symbol:
		if strings.Contains(nameTok.Text, "#{") {
			p.sink("unresolved string interpolation in dependency name")
		}
		decl.Name = Normalize(nameTok.Text)
		p.advance()
	case gemtoken.Identifier:
		decl.Name = nameTok.Text
		p.advance()
	default:
		return decl, p.fail(gemtoken.ErrNameLiteralExpected)
	}

	// optional '.freeze' immediately after the name only
	if p.cur().Kind == gemtoken.Dot && p.peekAt(1).Kind == gemtoken.Identifier && p.peekAt(1).Text == "freeze" {
		p.advance()
		p.advance()
	}

	versions := []string{}
	var inlineGroups, inlinePlatforms []string

	for p.cur().Kind == gemtoken.Comma {
		p.advance()
		handled, err := p.parseDependencyPair(&decl, &inlineGroups, &inlinePlatforms, &versions)
		if err != nil {
			return decl, err
		}
		if !handled {
			break
		}
	}

	if hasParen && p.cur().Kind == gemtoken.RightParen {
		p.advance()
	}

	decl.Versions = versions
	decl.Groups = mergeLabels(outerGroups, inlineGroups)
	decl.Platforms = mergeLabels(outerPlatforms, inlinePlatforms)

	return decl, nil
}

func (p *parser) parseDependencyPair(decl *GemDeclaration, inlineGroups, inlinePlatforms *[]string, versions *[]string) (bool, error) {
	tok := p.cur()
	switch {
	case tok.Kind == gemtoken.String:
		p.advance()
		if strings.Contains(tok.Text, "#{") {
			p.sink("unresolved string interpolation in version constraint")
		}
		if strings.HasPrefix(tok.Text, "%w") {
			for _, w := range ExpandWordArray(tok.Text) {
				*versions = append(*versions, FormatVersion(w))
			}
		} else {
			*versions = append(*versions, FormatVersion(Normalize(tok.Text)))
		}
		return true, nil

	case tok.Kind == gemtoken.LeftBracket:
		p.advance()
		for !p.atEOF() && p.cur().Kind != gemtoken.RightBracket {
			switch p.cur().Kind {
			case gemtoken.String:
				*versions = append(*versions, FormatVersion(Normalize(p.advance().Text)))
			case gemtoken.Comma:
				p.advance()
			default:
				goto closeBracket
			}
		}
	closeBracket:
		if p.cur().Kind == gemtoken.RightBracket {
			p.advance()
		}
		return true, nil

	case tok.Kind == gemtoken.Symbol || tok.Kind == gemtoken.Identifier:
		key := tok.Text
		if tok.Kind == gemtoken.Symbol {
			key = Normalize(tok.Text)
		}
		next := p.peekAt(1)
		if next.Kind != gemtoken.Equals && next.Kind != gemtoken.Colon {
			return false, nil
		}
		p.advance() // key
		p.advance() // '=' (hash rocket) or ':' (shorthand)
		p.parseDependencyOption(key, decl, inlineGroups, inlinePlatforms)
		return true, nil

	default:
		return false, nil
	}
}

func (p *parser) parseDependencyOption(key string, decl *GemDeclaration, inlineGroups, inlinePlatforms *[]string) {
	switch key {
	case "group":
		if p.cur().Kind == gemtoken.Identifier || p.cur().Kind == gemtoken.Symbol {
			val := p.cur().Text
			if p.cur().Kind == gemtoken.Symbol {
				val = Normalize(val)
			}
			*inlineGroups = append(*inlineGroups, val)
			p.advance()
		}
	case "platforms":
		if p.cur().Kind == gemtoken.LeftBracket {
			p.advance()
			for !p.atEOF() && p.cur().Kind != gemtoken.RightBracket {
				switch p.cur().Kind {
				case gemtoken.Symbol:
					*inlinePlatforms = append(*inlinePlatforms, Normalize(p.advance().Text))
				case gemtoken.Comma:
					p.advance()
				default:
					goto closePlatforms
				}
			}
		closePlatforms:
			if p.cur().Kind == gemtoken.RightBracket {
				p.advance()
			}
		} else if p.cur().Kind == gemtoken.Symbol {
			*inlinePlatforms = append(*inlinePlatforms, Normalize(p.advance().Text))
		}
	case "git", "github":
		decl.Git = p.consumeOptionValue()
	case "path":
		decl.Path = p.consumeOptionValue()
	case "require":
		tok := p.cur()
		require := true
		if tok.Kind == gemtoken.String && Normalize(tok.Text) == "false" {
			require = false
		}
		if !p.atEOF() {
			p.advance()
		}
		decl.Require = &require
	default:
		// unrecognized key: leave its value token alone, the caller's
		// comma loop will simply stop consuming further pairs.
	}
}

// consumeOptionValue consumes and normalizes a single String/Symbol/
// Identifier token used as the RHS of git:/github:/path:.
func (p *parser) consumeOptionValue() string {
	tok := p.cur()
	switch tok.Kind {
	case gemtoken.String, gemtoken.Symbol:
		p.advance()
		return Normalize(tok.Text)
	case gemtoken.Identifier:
		p.advance()
		return tok.Text
	default:
		return ""
	}
}

func mergeLabels(outer, inline []string) []string {
	merged := make([]string, 0, len(outer)+len(inline))
	merged = append(merged, outer...)
	merged = append(merged, inline...)
	return merged
}

func containsAny(list []string, targets ...string) bool {
	for _, item := range list {
		for _, t := range targets {
			if item == t {
				return true
			}
		}
	}
	return false
}

// --- group / target / platforms blocks ---

func (p *parser) parseLabels() []string {
	var labels []string
	for {
		tok := p.cur()
		switch tok.Kind {
		case gemtoken.Symbol, gemtoken.String:
			labels = append(labels, Normalize(tok.Text))
			p.advance()
		case gemtoken.Identifier:
			labels = append(labels, tok.Text)
			p.advance()
		default:
			return labels
		}
		if p.cur().Kind == gemtoken.Comma {
			p.advance()
			continue
		}
		return labels
	}
}

func (p *parser) parseGroupOrTargetStatement(ctx blockCtx) error {
	p.advance() // consume 'group'/'target'
	labels := p.parseLabels()
	if p.cur().Kind != gemtoken.Do {
		p.discardLine()
		return nil
	}
	p.advance() // consume 'do'
	if err := p.enterBlock(); err != nil {
		return err
	}
	nested := blockCtx{groups: labels, platforms: ctx.platforms}
	err := p.parseStatements(nested, true)
	p.leaveBlock()
	if err != nil {
		return err
	}
	if p.cur().Kind == gemtoken.End {
		p.advance()
	}
	return nil
}

func (p *parser) parsePlatformsStatement(ctx blockCtx) error {
	p.advance() // consume 'platforms'
	labels := p.parseLabels()
	if p.cur().Kind != gemtoken.Do {
		p.discardLine()
		return nil
	}
	p.advance() // consume 'do'
	if err := p.enterBlock(); err != nil {
		return err
	}
	nested := blockCtx{groups: ctx.groups, platforms: labels}
	err := p.parseStatements(nested, true)
	p.leaveBlock()
	if err != nil {
		return err
	}
	if p.cur().Kind == gemtoken.End {
		p.advance()
	}
	return nil
}

// --- balanced-block skipping for code this parser does not recognize ---

func (p *parser) skipBalancedBlock(opener gemtoken.Kind) error {
	p.advance() // consume the opening token
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			return nil
		}
		switch opener {
		case gemtoken.Do:
			switch p.cur().Kind {
			case gemtoken.Do, gemtoken.If:
				depth++
			case gemtoken.End:
				depth--
			}
		case gemtoken.LeftParen:
			switch p.cur().Kind {
			case gemtoken.LeftParen:
				depth++
			case gemtoken.RightParen:
				depth--
			}
		}
		p.advance()
	}
	return nil
}

// --- Gem::Specification.new / Pod::Spec.new ---

func (p *parser) matchSpecPrefix() bool {
	ns := p.cur()
	if ns.Kind != gemtoken.Identifier || (ns.Text != "Gem" && ns.Text != "Pod") {
		return false
	}
	if p.peekAt(1).Kind != gemtoken.Colon || p.peekAt(2).Kind != gemtoken.Colon {
		return false
	}
	cls := p.peekAt(3)
	if cls.Kind != gemtoken.Identifier {
		return false
	}
	if (ns.Text == "Gem" && cls.Text != "Specification") || (ns.Text == "Pod" && cls.Text != "Spec") {
		return false
	}
	if p.peekAt(4).Kind != gemtoken.Dot {
		return false
	}
	m := p.peekAt(5)
	return m.Kind == gemtoken.Identifier && m.Text == "new"
}

func (p *parser) parseSpecConstructor() error {
	for i := 0; i < 6; i++ {
		p.advance()
	}

	if p.cur().Kind == gemtoken.String {
		p.out.SelfName = Normalize(p.advance().Text)
	}

	if p.cur().Kind != gemtoken.Do {
		p.discardLine()
		return nil
	}
	p.advance() // consume 'do'

	argName := ""
	if p.cur().Kind == gemtoken.Symbol && p.cur().Text == "|" {
		p.advance()
		if p.cur().Kind == gemtoken.Identifier {
			argName = p.advance().Text
		}
		if p.cur().Kind == gemtoken.Symbol && p.cur().Text == "|" {
			p.advance()
		}
	}

	if err := p.enterBlock(); err != nil {
		return err
	}
	err := p.parseSpecBlock(argName)
	p.leaveBlock()
	if err != nil {
		return err
	}
	if p.cur().Kind == gemtoken.End {
		p.advance()
	}
	return nil
}

func (p *parser) parseSpecBlock(argName string) error {
	for {
		p.skipNewlines()
		if p.atEOF() || p.cur().Kind == gemtoken.End {
			return nil
		}
		if p.cur().Kind == gemtoken.If {
			if err := p.parseSpecIfElse(argName); err != nil {
				return err
			}
			continue
		}
		if err := p.parseSpecStatement(argName); err != nil {
			return err
		}
	}
}

// parseSpecIfElse only interprets the first (if) branch; the else
// branch, when present, is skipped wholesale through the matching end.
func (p *parser) parseSpecIfElse(argName string) error {
	if err := p.enterBlock(); err != nil {
		return err
	}
	defer p.leaveBlock()

	p.discardLine() // discard "if CONDITION" itself, through the newline

	for {
		p.skipNewlines()
		if p.atEOF() {
			return nil
		}
		if p.cur().Kind == gemtoken.Else || p.cur().Kind == gemtoken.End {
			break
		}
		if p.cur().Kind == gemtoken.If {
			if err := p.parseSpecIfElse(argName); err != nil {
				return err
			}
			continue
		}
		if err := p.parseSpecStatement(argName); err != nil {
			return err
		}
	}

	if p.cur().Kind == gemtoken.Else {
		p.advance()
		return p.skipThroughMatchingEnd()
	}
	if p.cur().Kind == gemtoken.End {
		p.advance()
	}
	return nil
}

func (p *parser) skipThroughMatchingEnd() error {
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			return nil
		}
		switch p.cur().Kind {
		case gemtoken.If, gemtoken.Do:
			depth++
		case gemtoken.End:
			depth--
		}
		p.advance()
	}
	return nil
}

func (p *parser) parseSpecStatement(argName string) error {
	tok := p.cur()
	if tok.Kind != gemtoken.Identifier {
		p.discardLine()
		return nil
	}
	if argName != "" && tok.Text != argName {
		p.discardLine()
		return nil
	}
	if p.peekAt(1).Kind != gemtoken.Dot {
		p.discardLine()
		return nil
	}
	p.advance() // receiver identifier
	p.advance() // '.'

	if p.cur().Kind != gemtoken.Identifier {
		p.discardLine()
		return nil
	}
	method := p.advance().Text

	if p.cur().Kind == gemtoken.Equals {
		p.advance()
		if p.cur().Kind == gemtoken.String {
			val := Normalize(p.advance().Text)
			switch method {
			case "name":
				p.out.SelfName = val
			case "version":
				p.out.SelfVersion = val
			}
		}
		p.discardLine()
		return nil
	}

	switch method {
	case "send":
		return p.parseSendDependency()
	case "add_dependency", "add_runtime_dependency", "add_development_dependency", "dependency":
		decl, err := p.parseDependencyDeclaration(nil, nil)
		if err != nil {
			return err
		}
		development := strings.Contains(method, "development")
		if method == "dependency" {
			decl.Groups = nil
		}
		if p.cur().Kind == gemtoken.If {
			decl.Groups = nil
		}
		p.discardLine()
		p.routeDeclaration(decl, development)
		return nil
	default:
		p.discardLine()
		return nil
	}
}

func (p *parser) parseSendDependency() error {
	if p.cur().Kind == gemtoken.LeftParen {
		p.advance()
	}
	if p.cur().Kind != gemtoken.Symbol {
		p.sink("unresolvable dynamic dispatch via send")
		p.discardLine()
		return nil
	}
	sym := Normalize(p.advance().Text)
	if !strings.Contains(sym, "dependency") {
		p.discardLine()
		return nil
	}
	development := strings.Contains(sym, "development")

	if p.cur().Kind != gemtoken.Comma {
		p.discardLine()
		return nil
	}
	p.advance() // consume comma

	decl, err := p.parseDependencyDeclaration(nil, nil)
	if err != nil {
		return err
	}
	if p.cur().Kind == gemtoken.If {
		decl.Groups = nil
	}
	p.discardLine()
	p.routeDeclaration(decl, development)
	return nil
}
