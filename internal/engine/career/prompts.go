package career

// Prompt templates. Data only, no logic.

const analyzeSystemPrompt = `You are an expert ATS (Applicant Tracking System) resume analyst and career coach. You always reply with a single JSON object and nothing else.`

const analyzePrompt = `Analyze the following resume%s and return ONLY a JSON object with this exact structure:
{
  "atsScore": <0-100, overall ATS compatibility>,
  "formatScore": <0-100, formatting and structure quality>,
  "keywordCount": <number of relevant industry keywords found>,
  "yearsOfExperience": "<e.g. 3-5 years>",
  "educationLevel": "<highest degree>",
  "jobMatchScore": <0-100, fit against the job description, or general market fit if none>,
  "skills": ["<skill>", ...],
  "scoreBreakdown": [
    {"category": "Keywords|Formatting|Experience|Education|Skills", "score": <0-100>, "description": "<one sentence>"}
  ],
  "improvementSuggestions": [
    {"title": "<short>", "description": "<what and why>", "section": "<resume section>", "priority": "high|medium|low", "examples": ["<concrete rewrite>"]}
  ],
  "jobRecommendations": [
    {"id": "<slug>", "title": "<role>", "company": "<example employer>", "location": "<location>", "description": "<one sentence>", "matchPercentage": <0-100>, "skills": ["<skill>"], "salary": {"min": <n>, "median": <n>, "max": <n>}}
  ]
}

Rules:
- Scores are integers between 0 and 100.
- Give 4-6 scoreBreakdown entries, 3-6 improvementSuggestions and 3-5 jobRecommendations.
- Base every statement on the resume text; do not invent employers the candidate worked for.
%s
RESUME:
%s`

const analyzeJobSection = `
JOB DESCRIPTION:
%s
`

const generateResumeSystemPrompt = `You are a professional resume writer. You write concise, achievement-oriented resumes tailored to a specific job.`

const generateResumePrompt = `Rewrite the candidate's resume so it is tailored to the job description below.

The output must contain these sections, in this order, each introduced by its heading:
Professional Summary
Experience
Skills
Contact Information
References
Certifications

Keep facts from the original resume; do not invent employers, dates or degrees. Emphasise experience and skills that match the job.

JOB DESCRIPTION:
%s

CURRENT RESUME:
%s`

const assistantSystemPrompt = `You are a helpful assistant.`

const questionsPrompt = `You are interviewing a candidate for the role of %s.
Experience level: %s
Skills: %s
Interview type: %s

Write exactly %d interview questions appropriate for this candidate and interview type.
Output one question per line. Every line must end with a question mark. No numbering, no commentary.`

const responseAnalysisPrompt = `You are an experienced interviewer evaluating a candidate's answer.

Role: %s
Experience level: %s
Interview type: %s
Question: %s
Answer: %s

Return ONLY a JSON object:
{
  "clarity": <0-100>,
  "confidence": <0-100>,
  "relevance": <0-100>,
  "completeness": <0-100>,%s
  "strengths": ["<...>"],
  "weaknesses": ["<...>"],
  "suggestions": ["<...>"]
}`

const technicalAccuracyField = `
  "technicalAccuracy": <0-100>,`

const feedbackPrompt = `You are an interview coach writing the final feedback for a mock interview.

Candidate: %s
Role: %s
Experience level: %s
Interview type: %s

Questions, answers and per-answer scores:
%s

Return ONLY a JSON object:
{
  "overallScore": <0-100>,
  "strengths": ["<...>"],
  "areasForImprovement": ["<...>"],
  "recommendations": ["<...>"],
  "summary": "<3-5 sentences>"
}`

const roadmapSystemPrompt = `You are an expert learning designer. You build practical, well-sequenced learning roadmaps and reply with JSON only.`

const roadmapPrompt = `Create a %s learning roadmap.

Topic: %s
Goals: %s
Current level: %s
Timeframe: %s

Return ONLY a JSON object:
{
  "title": "<roadmap title>",
  "description": "<2-3 sentences>",
  "milestones": [
    {"title": "<...>", "type": "foundation|core|advanced|project", "description": "<...>", "duration": "<e.g. 2 weeks>", "tasks": ["<...>"]}
  ],
  "resources": [
    {"title": "<...>", "type": "course|book|video|documentation|article|practice", "description": "<...>", "url": "<https://...>", "level": "beginner|intermediate|advanced", "tags": ["<...>"], "cost": "free|paid"}
  ]
}

Rules:
- Milestone durations must add up to the timeframe.
- Include between 10 and 15 resources, mixing free and paid.
- Only use real, well-known resources with working URLs.`
