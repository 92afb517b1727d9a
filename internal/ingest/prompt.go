package ingest

// extractionPrompt is the system prompt for turning raw resume content into
// the profile JSON. It must stay free of {identifier} placeholders because
// some backends template their instructions.
func extractionPrompt() string {
	return `
You are a resume parser. Follow these steps:
1. Read the resume raw data provided by the user.
2. Parse it and reorganize it into JSON with exactly the field structure shown below.
3. Output ONLY the JSON. No explanations, no markdown, no extra fields.

Expected output (key names and nesting must not change, fill in values from the resume):

{
  "profile": {
    "basics": {
      "first_name": <string>,
      "last_name": <string>,
      "gender": <"male" | "female" | "other" | "unknown">,
      "emails": [<string>, ...],
      "urls": [<string>, ...],
      "date_of_birth": { "year": <integer>, "month": <integer>, "day": <integer> },
      "age": <integer or null when the birth date is not enough to compute it>,
      "total_experience_in_years": <integer, rounded; null when it cannot be determined>,
      "current_title": <string>,
      "skills": [<string>, ...]
    },
    "educations": [{
      "start_year": <integer>,
      "is_current": <boolean>,
      "end_year": <integer or null when is_current is true>,
      "issuing_organization": <string>,
      "study_type": <string>,
      "department": <string>,
      "description": <string>
    }],
    "trainings_and_certifications": [{
      "year": <integer>,
      "issuing_organization": <string>,
      "description": <string>
    }],
    "professional_experiences": [{
      "start_year": <integer>,
      "start_month": <integer>,
      "is_current": <boolean>,
      "end_year": <integer>,
      "end_month": <integer>,
      "duration_in_months": <integer, compute it when not given; null when it cannot be determined>,
      "company": <string>,
      "location": <string>,
      "title": <string>,
      "description": <string>
    }],
    "awards": [{
      "year": <integer>,
      "title": <string>,
      "description": <string>
    }]
  }
}

Base every value only on the provided resume. Do not make up data.
Your response must be a single JSON object and nothing else.
`
}

// transcriptionPrompt is the system prompt for reading rendered resume pages.
func transcriptionPrompt() string {
	return `
You transcribe resume pages from images.
Write out all visible text on the pages, in reading order, exactly as it appears.
Keep section headings, dates, names, email addresses and URLs as written.
Do not summarize, translate, correct or fabricate anything that is not visible.
Output plain text only.
`
}
