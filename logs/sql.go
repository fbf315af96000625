package logs

const createSolveTable = `
CREATE TABLE IF NOT EXISTS solves (
  time datetime,
  width int,
  height int,
  depth int,
  moves text,
  value int,
  best int,
  nodes int,
  elapsed_ms int,
  source text
)`

const createSummaryView = `
CREATE VIEW IF NOT EXISTS solve_summary (
  width, height, depth, value, solves, nodes, elapsed_ms
) AS
SELECT width, height, depth,
       CASE value WHEN 1 THEN 'win' WHEN -1 THEN 'loss' ELSE 'draw' END,
       count(*), sum(nodes), sum(elapsed_ms)
 FROM solves
 GROUP BY width, height, depth, value
`

const insertStmt = `
INSERT INTO solves (time, width, height, depth, moves, value, best, nodes, elapsed_ms, source)
VALUES (:time, :width, :height, :depth, :moves, :value, :best, :nodes, :elapsed_ms, :source)
`

const selectSummary = `
SELECT width, height, depth, value, solves, nodes, elapsed_ms
FROM solve_summary
ORDER BY width, height, depth, value
`
