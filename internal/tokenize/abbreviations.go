package tokenize

// DefaultAbbreviations are common Spanish and English abbreviations whose
// trailing period does not end a sentence. Matching is case-sensitive.
var DefaultAbbreviations = []string{
	"Sr.", "Sra.", "Srta.", "Dr.", "Dra.", "Prof.", "Ing.", "Lic.",
	"Arq.", "Cap.", "Gral.", "Cnel.", "etc.", "vs.", "p.ej.",
	"a.C.", "d.C.", "n.º", "núm.", "pág.", "tel.", "vol.",
	"art.", "inc.", "párr.", "ej.", "fig.", "ref.", "cf.",
	"Ud.", "Vd.", "Uds.", "Vds.", "Av.", "Ave.",
	"nro.", "Blvd.", "Dpto.", "Depto.", "Prov.",
	"Col.", "Edo.", "Mpio.", "C.P.", "Tel.", "Cel.",
	"Ext.", "Int.", "Apt.",
	"Mr.", "Mrs.", "Ms.", "St.", "Jr.", "e.g.", "i.e.",
}
