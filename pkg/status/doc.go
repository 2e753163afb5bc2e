/*
Package status keeps the operation journal of a packrc run.

	+-----------+     +-----------+
	|   stage   |     |  archive  |
	|  (copy)   |     |   (zip)   |
	+-----+-----+     +-----+-----+
	      |                 |
	      +--------+--------+
	               |
	        +------+------+
	        |   Journal   |
	        |   (CSV)     |
	        +-------------+

🎯 Purpose:
- Records every copy and every archived entry of a run
- Keeps earlier rows safe when the process dies mid-run

🔄 Flow:
1. LogPath stamps the configured log name with the run time
2. Open truncates the file and writes the header row
3. Record/Append open the file, write one row and close it again

📝 Format:

	timestamp,operation,source,destination
	2025-01-02T15:04:05.123456,copy,/src/a.txt,/work/out/a.txt
	2025-01-02T15:04:05.234567,zip,/work/out/a.txt,a.txt
*/
package status
