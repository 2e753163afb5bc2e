/*
Package operation runs the staging and packaging pipeline of packrc.

	+-------------+
	|  Manifest   |
	|  (config)   |
	+------+------+
	       |
	+------+------+     +-------------+     +-------------+
	|    Clean    | --> |    Stage    | --> |   Archive   |
	| (optional)  |     |   (copy)    |     |    (zip)    |
	+-------------+     +------+------+     +------+------+
	                           |                   |
	                    +------+-------------------+------+
	                    |        Journal (status)         |
	                    +---------------------------------+

🎯 Purpose:
- Resolves the run layout (Plan) from the manifest
- Copies every valid rule into the staging directory
- Packages the staging directory with exactly one strategy

🔄 Flow:
1. Run loads the manifest and renders the archive name
2. The journal is opened with the run timestamp in its name
3. The runner executes clean, stage and archive in order
4. The first error stops everything; finished work stays on disk

⚠️ Error policy:
- Invalid rules warn and are skipped
- A missing source aborts the run before the archive is built
- Template and archive failures abort the run

🔍 Example:

	res, err := operation.Run(ctx, operation.Options{
		ManifestPath: "package.toml",
		LogPath:      "operation.log",
	})
*/
package operation
