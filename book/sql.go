package book

const createPositionsTable = `
CREATE TABLE IF NOT EXISTS positions (
  code text,
  width integer,
  height integer,
  depth integer,
  plies integer,
  value integer,
  moves text,
  PRIMARY KEY (code, width, height, depth)
)
`

// Entry is one solved position. Value is from the point of view of
// the side to move.
type Entry struct {
	Code   string `db:"code"`
	Width  int    `db:"width"`
	Height int    `db:"height"`
	Depth  int    `db:"depth"`
	Plies  int    `db:"plies"`
	Value  int    `db:"value"`
	Moves  string `db:"moves"`
}

const selectValue = `
SELECT value FROM positions
WHERE code = ? AND width = ? AND height = ? AND depth = ?
`

const insertPosition = `
INSERT OR REPLACE INTO positions (code, width, height, depth, plies, value, moves)
VALUES (:code, :width, :height, :depth, :plies, :value, :moves)
`

const selectCounts = `
SELECT plies, value, count(*) AS count FROM positions
WHERE width = ? AND height = ? AND depth = ?
GROUP BY plies, value
ORDER BY plies, value
`

const selectMaxPlies = `
SELECT coalesce(max(plies), -1) FROM positions
WHERE width = ? AND height = ? AND depth = ?
`
