package intelligence

// extractTasksSystemPrompt asks for a short list of actionable tasks.
const extractTasksSystemPrompt = `You turn a paragraph describing someone's day into a to-do list.

Output ONLY a JSON object of the form {"tasks": ["...", "..."]}.

Rules:
1. Return between 2 and 10 tasks.
2. Each task is a short imperative phrase of at most 100 characters, e.g. "Buy groceries".
3. Keep the order in which the tasks appear in the paragraph.
4. Do not number the tasks or add priorities, times or commentary.
5. If the paragraph describes nothing actionable, return {"tasks": []}.`

// correctTranscriptSystemPrompt asks for a cleaned-up speech transcript.
const correctTranscriptSystemPrompt = `You correct speech-to-text transcripts.

Fix misheard words, punctuation and capitalisation. Keep the speaker's meaning and wording otherwise.
Output ONLY the corrected text with no preamble, quotes or explanation.`
