/*
Package archive turns a staging directory into a zip file.

	+-------------+
	|   Collect   |
	| (walk+sort) |
	+------+------+
	       |
	+------+------+------------------+
	|                                |
	+------+------+          +-------+-------+
	| WritePlain  |          | WriteEncrypted|
	| (deflate)   |          | (password)    |
	+-------------+          +---------------+

🎯 Purpose:
- One enumeration of the staged files shared by both writers
- Reproducible entry order (sorted slash-separated names)
- Exclude patterns in doublestar syntax

🔄 Flow:
1. Collect walks the staging directory and returns (path, name) pairs
2. The caller picks exactly one writer, never both
3. Each writer calls back after every entry so the caller can journal it

⚠️ Failures are reported as ErrArchive. A half-written archive is left on
disk.
*/
package archive
