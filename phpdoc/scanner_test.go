package phpdoc

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(records []MethodRecord) []string {
	return lo.Map(records, func(r MethodRecord, _ int) string { return r.Name })
}

func TestLocate_UndocumentedPublicMethod(t *testing.T) {
	src := "<?php\n\nclass Math\n{\n    public function add($a, $b)\n    {\n        return $a + $b;\n    }\n}\n"

	records, warnings := Locate(src)
	require.Empty(t, warnings)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "add", rec.Name)
	assert.Equal(t, Public, rec.Visibility)
	assert.Nil(t, rec.Existing)
	assert.Equal(t, []Param{{Name: "a"}, {Name: "b"}}, rec.Signature.Params)
	assert.Empty(t, rec.Signature.ReturnType)
	assert.Equal(t, strings.Index(src, "public function add"), rec.InsertionPoint)
	assert.Equal(t, "    ", rec.Indent)
	assert.Equal(t, 5, rec.Line)
	assert.Equal(t, "{\n        return $a + $b;\n    }", rec.Body(src))
	assert.Less(t, rec.InsertionPoint, rec.BodySpan.Start)
}

func TestLocate_IgnoresLiteralsAndComments(t *testing.T) {
	src := `<?php
$s = "function fake() {";
$t = 'function other() { \' }';
// function inLineComment() {}
# function inHashComment() {}
/* function inBlock() { */
$h = <<<EOT
function fakeHeredoc() {
EOT;
$n = <<<'TXT'
    function fakeNowdoc() {
    TXT;
$b = ` + "`function shell() {`" + `;

function real($x)
{
    return "}";
}
`
	records, warnings := Locate(src)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"real"}, names(records))
}

func TestLocate_Visibility(t *testing.T) {
	src := `<?php
abstract class Shape
{
    final public static function create() {}
    protected function area() {}
    private function secret() {}
    function legacy() {}
    abstract protected function name(): string;
}

function helper() {}
`
	records, _ := Locate(src)
	require.Equal(t, []string{"create", "area", "secret", "legacy", "name", "helper"}, names(records))

	want := []Visibility{Public, Protected, Private, Public, Protected, Public}
	for i, rec := range records {
		assert.Equal(t, want[i], rec.Visibility, rec.Name)
	}

	assert.Equal(t, []string{"final", "public", "static"}, records[0].Modifiers)
	assert.True(t, records[4].HasModifier("abstract"))

	abstract := records[4]
	assert.Equal(t, "string", abstract.Signature.ReturnType)
	assert.Equal(t, 0, abstract.BodySpan.Len())
	assert.Equal(t, byte(';'), src[abstract.BodySpan.Start])
	assert.Empty(t, abstract.Body(src))
}

func TestLocate_Docblocks(t *testing.T) {
	src := `<?php
/**
 * Class docs.
 */
class Repo
{
    public function noDoc() {}

    /**
     * Finds a row.
     */
    #[Route('/find')]
    public function find(int $id) {}

    /** Not attached. */
    // plain comment in between
    public function interrupted() {}

    /**
     * Blank lines are fine.
     */


    public function spaced() {}

    /**/
    public function emptyComment() {}
}
`
	records, _ := Locate(src)
	require.Equal(t, []string{"noDoc", "find", "interrupted", "spaced", "emptyComment"}, names(records))

	assert.Nil(t, records[0].Existing, "class docblock must not attach to the first method")

	find := records[1]
	require.NotNil(t, find.Existing)
	assert.Equal(t, "/**\n     * Finds a row.\n     */", find.Existing.Text)
	assert.Equal(t, find.Existing.Span.Start, find.InsertionPoint)
	assert.Equal(t, strings.Index(src, "#[Route"), find.DeclSpan.Start)
	assert.Equal(t, src[find.Existing.Span.Start:find.Existing.Span.End], find.Existing.Text)

	assert.Nil(t, records[2].Existing)
	assert.NotNil(t, records[3].Existing)
	assert.Nil(t, records[4].Existing)
}

func TestLocate_Parameters(t *testing.T) {
	src := `<?php
class Service
{
    public function __construct(
        private readonly Foo $foo,
        #[SensitiveParameter] string $password = "(a, b)",
    ) {}

    public function run(?int $a = null, string|int $b = 'x,y', array $c = [1, 2], &$d, int ...$rest): ?static
    {
    }
}
`
	records, warnings := Locate(src)
	require.Empty(t, warnings)
	require.Len(t, records, 2)

	assert.Equal(t, []Param{
		{Name: "foo", Type: "Foo"},
		{Name: "password", Type: "string", Default: `"(a, b)"`, HasDefault: true},
	}, records[0].Signature.Params)

	assert.Equal(t, []Param{
		{Name: "a", Type: "?int", Default: "null", HasDefault: true},
		{Name: "b", Type: "string|int", Default: "'x,y'", HasDefault: true},
		{Name: "c", Type: "array", Default: "[1, 2]", HasDefault: true},
		{Name: "d", ByRef: true},
		{Name: "rest", Type: "int", Variadic: true},
	}, records[1].Signature.Params)
	assert.Equal(t, "?static", records[1].Signature.ReturnType)
	assert.Equal(t, "run(?int $a = null, string|int $b = 'x,y', array $c = [1, 2], &$d, int ...$rest): ?static", records[1].SignatureText())
}

func TestLocate_SkipsClosuresAndNestedDeclarations(t *testing.T) {
	src := `<?php
class Handler
{
    public function handle(array $items)
    {
        $f = function ($x) { return $x; };
        $g = fn($x) => $x;
        array_map(static function ($y) {}, $items);
        return new class {
            public function inner() {}
        };
    }

    public function after() {}
}
`
	records, warnings := Locate(src)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"handle", "after"}, names(records))
}

func TestLocate_BracedNamespaces(t *testing.T) {
	src := `<?php
namespace App\Models {
    class User
    {
        public function id(): int { return 1; }
    }
}

namespace App\Http {
    if (!class_exists(Controller::class)) {
        class Controller
        {
            protected function authorize(string $ability) {}
        }
    }
}
`
	records, warnings := Locate(src)
	assert.Empty(t, warnings)
	require.Equal(t, []string{"id", "authorize"}, names(records))
	assert.Equal(t, "        ", records[0].Indent)
	assert.Equal(t, Protected, records[1].Visibility)
	assert.Equal(t, "            ", records[1].Indent)
}

func TestLocate_InlineHTML(t *testing.T) {
	src := "<html>function notPhp() {}</html>\n<?php function real() { ?>\n<div>{</div>\n<?php } ?>\n<p>function alsoNot() {}</p>\n<?= 1 ?>"

	records, warnings := Locate(src)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"real"}, names(records))
}

func TestLocate_UseFunctionImport(t *testing.T) {
	src := "<?php\nuse function Foo\\bar;\n$this->function = 1;\nFoo::function();\n"

	records, warnings := Locate(src)
	assert.Empty(t, records)
	assert.Empty(t, warnings)
}

func TestLocate_UnterminatedBody(t *testing.T) {
	src := "<?php\nfunction good() {}\nfunction broken() {\n    if (true) {\n"

	records, warnings := Locate(src)
	assert.Equal(t, []string{"good"}, names(records))
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Message, "broken")
	assert.Equal(t, 3, warnings[0].Line)
}

func TestLocate_NoPHP(t *testing.T) {
	records, warnings := Locate("just text with function foo() {}")
	assert.Empty(t, records)
	assert.Empty(t, warnings)
}

func TestLocate_CRLF(t *testing.T) {
	src := "<?php\r\nclass A\r\n{\r\n\t/**\r\n\t * Doc.\r\n\t */\r\n\tpublic function a() {}\r\n}\r\n"

	records, _ := Locate(src)
	require.Len(t, records, 1)
	assert.Equal(t, "\t", records[0].Indent)
	require.NotNil(t, records[0].Existing)
	assert.Equal(t, 4, lineOf(src, records[0].InsertionPoint))
}

func TestLocate_OrderedNonOverlapping(t *testing.T) {
	src := `<?php
namespace App;

interface Named { public function name(): string; }

trait Greets
{
    public function greet(string $who = "}") { return "hi {$who}"; }
}

final class Person implements Named
{
    use Greets;

    public function name(): string { return 'p'; }

    public function nested(): void
    {
        if (true) { while (false) { } }
    }
}

function top(): void {}
`
	records, _ := Locate(src)
	require.Equal(t, []string{"name", "greet", "name", "nested", "top"}, names(records))

	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		assert.Less(t, prev.DeclSpan.Start, cur.DeclSpan.Start)
		assert.False(t, prev.DeclSpan.Overlaps(cur.DeclSpan))
		assert.LessOrEqual(t, prev.DeclSpan.End, cur.InsertionPoint)
	}
	for _, rec := range records {
		assert.LessOrEqual(t, rec.InsertionPoint, rec.BodySpan.Start)
		assert.False(t, Span{Start: rec.InsertionPoint, End: rec.InsertionPoint + 1}.Overlaps(rec.BodySpan))
	}

	again, _ := Locate(src)
	assert.Equal(t, records, again)
}

func TestParseVisibility(t *testing.T) {
	v, err := ParseVisibility("Protected")
	require.NoError(t, err)
	assert.Equal(t, Protected, v)

	_, err = ParseVisibility("internal")
	assert.Error(t, err)
}
