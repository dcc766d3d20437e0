package mcpserver

// IngestContract describes the scoring contract that LLM consumers must
// follow when persisting knowledge through the ingest tools.
const IngestContract = `# Munin Ingest Contract

Every ingest tool call MUST carry two scores, both in [0, 1]:

- **confidence** – how certain you are the information is accurate.
- **relevance**  – how relevant it is to the organization's work.

Both scores are checked against configured thresholds before anything is
written. If either falls below its threshold the call is NOT persisted;
the tool returns a review_required result listing each failing dimension
with its value and threshold. Nothing is partially written: a rejected
call leaves every store untouched.

## Stores

1. **context** – a single Markdown document of ` + "`## Section`" + ` blocks.
   Use update_context_section with mode "replace" (default) or "append".
2. **url_index** – a YAML list of URL records, deduplicated by
   normalized URL. Re-adding a known URL merges fields: non-empty new
   values win, the original added_date is preserved.
3. **notes** – Markdown files with YAML frontmatter, partitioned by
   topic, each topic paired with an _index.yaml. Unknown topics fall
   back to the default topic rather than failing.

## Rules

1. Do not invent scores. If you cannot justify a value, score low and
   let the gate route the item to review.
2. Prefer the narrowest store: facts about the org go to context,
   links go to the URL index, everything substantial becomes a note.
3. Tags are lowercase, hyphen-separated, reused from get_available_tags
   whenever an existing tag fits.
`
