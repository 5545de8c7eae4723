package mysql

// Rows mirror the file layout: entry holds the file name the record would have on disk
// ("data.json", "data-v<stamp>.json", "data-archive-v<stamp>.json"), which keeps the
// single published slot unique per property.

const listIDsSQL = `
SELECT DISTINCT property_id
FROM property_records
WHERE slot IN ('published', 'draft')
ORDER BY property_id
`

const readPublishedSQL = `
SELECT body FROM property_records
WHERE property_id = ? AND slot = 'published'
`

const draftStampsSQL = `
SELECT stamp FROM property_records
WHERE property_id = ? AND slot = 'draft'
ORDER BY stamp
`

const readDraftSQL = `
SELECT body FROM property_records
WHERE property_id = ? AND slot = 'draft' AND stamp = ?
`

const insertRecordSQL = `
INSERT INTO property_records (property_id, slot, stamp, entry, body)
VALUES (?, ?, ?, ?, ?)
`

const deleteDraftSQL = `
DELETE FROM property_records
WHERE property_id = ? AND slot = 'draft' AND stamp = ?
`

const lockDraftSQL = readDraftSQL + " FOR UPDATE"

const lockPublishedSQL = `
SELECT id, stamp FROM property_records
WHERE property_id = ? AND slot = 'published'
FOR UPDATE
`

const lockDraftsSQL = `
SELECT id, entry FROM property_records
WHERE property_id = ? AND slot = 'draft'
ORDER BY stamp
FOR UPDATE
`

const archiveRowSQL = `
UPDATE property_records SET slot = 'archive', entry = ?
WHERE id = ?
`

const archiveEntryExistsSQL = `
SELECT COUNT(*) FROM property_records
WHERE property_id = ? AND slot = 'archive' AND entry = ?
`

const archiveEntriesSQL = `
SELECT entry FROM property_records
WHERE property_id = ? AND slot = 'archive'
ORDER BY entry
`
