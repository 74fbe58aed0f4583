package magic_test

import (
	"testing"

	"github.com/aretw0/sparkbridge/pkg/magic"
	"github.com/stretchr/testify/assert"
)

func TestTranslate_SubLanguagePrefixes(t *testing.T) {
	tr := magic.NewTranslator()
	plain := "select tables"

	for _, tag := range []string{"sql", "hive"} {
		want := "%%spark -c " + tag + "\n" + plain
		for _, prefix := range []string{"%" + tag + " ", "%" + tag + "\n", "%%" + tag + " ", "%%" + tag + "\n"} {
			t.Run(prefix, func(t *testing.T) {
				assert.Equal(t, want, tr.Translate(prefix+plain))
				assert.Equal(t, tag, tr.Route(prefix+plain))
			})
		}
	}
}

func TestTranslate_Default(t *testing.T) {
	tr := magic.NewTranslator()

	tests := []struct {
		name string
		code string
	}{
		{"Plain code", "select tables"},
		{"Unknown tag", "%sqlx select tables"},
		{"Tag is case sensitive", "%SQL select tables"},
		{"Tag without separator", "%sql"},
		{"Tab is not a separator", "%sql\tselect tables"},
		{"Lone carriage return", "%sql\rselect tables"},
		{"Triple marker", "%%%sql select tables"},
		{"Marker only", "%% select"},
		{"Tag not at start", " %sql select tables"},
		{"Other magic", "%%configure\n{}"},
		{"Empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "%%spark\n"+tt.code, tr.Translate(tt.code))
			assert.Empty(t, tr.Route(tt.code))
		})
	}
}

func TestTranslate_RemainderVerbatim(t *testing.T) {
	tr := magic.NewTranslator()

	assert.Equal(t, "%%spark -c sql\n  select 1\n\n", tr.Translate("%sql   select 1\n\n"))
	assert.Equal(t, "%%spark -c sql\n\nselect 1", tr.Translate("%%sql\n\nselect 1"))
	assert.Equal(t, "%%spark -c sql\n", tr.Translate("%sql "))
	assert.Equal(t, "%%spark -c sql\nselect 1\r\nfrom t", tr.Translate("%sql\r\nselect 1\r\nfrom t"))
	assert.Equal(t, "%%spark -c hive\n\r\nshow tables", tr.Translate("%%hive\r\n\r\nshow tables"))
}

func TestTranslate_ExtraSubLanguages(t *testing.T) {
	tr := magic.NewTranslator(magic.WithSubLanguages("pyspark", "", "bad tag", "%x"))

	assert.Equal(t, []string{"hive", "pyspark", "sql"}, tr.SubLanguages())
	assert.Equal(t, "%%spark -c pyspark\ndf.show()", tr.Translate("%%pyspark df.show()"))
}

func TestBootstrapDirectives(t *testing.T) {
	assert.Equal(t, "%spark add TestKernel python url=url;username=u;password=p skip",
		magic.Register("TestKernel", "python", "url=url;username=u;password=p"))
	assert.Equal(t, "%load_ext remotespark", magic.LoadExtension(""))
	assert.Equal(t, "%load_ext custom", magic.LoadExtension("custom"))
	assert.Equal(t, "%spark cleanup", magic.Cleanup())
}
