/*
Package config loads packrc manifests.

	            +-------------+
	            |  Manifest   |
	            | (Variables, |
	            |  Zip, Rules)|
	            +------+------+
	                   |
	            +------+------+
	            |  Document   |
	            | (ordered)   |
	            +------+------+
	                   |
	   +--------+------+-----+--------+
	   |        |            |        |
	+--+---+ +--+---+    +---+--+ +---+--+
	| TOML | | YAML |    | HCL  | | JSON |
	+------+ +------+    +------+ +------+

🎯 Purpose:
- Parses manifest text into a generic, ordered Document
- Interprets the Document into variables, a zip spec and copy rules
- Reports fatal manifest problems before any file I/O happens

🔄 Flow:
1. Load reads the manifest file
2. GetParser picks a syntax from the file extension (TOML when unknown)
3. Decode picks out the variables and zip sections
4. Every table whose key starts with "file" becomes a CopyRule, in
   declaration order

⚡ Error policy:
- a missing or empty zip section is fatal (ErrZipSectionRequired)
- a file section without from/to is kept but marked invalid; its Validate
  method returns ErrRuleSkipped so the stage can warn and move on

🔍 Example:

	m, err := config.Load(ctx, "packrc.toml")
	if errors.Is(err, config.ErrZipSectionRequired) {
		// manifest needs a [zip] table
	}
	for _, rule := range m.Rules {
		if err := rule.Validate(); err != nil {
			continue
		}
	}
*/
package config
