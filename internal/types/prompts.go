package types

// Script planner prompt. Placeholders: title, source type, section count,
// image count, sections JSON, image inventory JSON.
var ScriptPlannerPrompt = `You are a professional video scriptwriter. Convert this content into a
cinematic video script. The video should feel like a polished documentary or explainer video —
NOT a slideshow or presentation.

Title: %s
Source type: %s
Total sections: %d
Total images available: %d

Section Contents:
%s

Available Images (by index, with classification):
%s

I am also sending you thumbnail previews of each available image so you can SEE what they contain.

Create a video script as JSON with this exact structure:
{
    "title": "compelling video title",
    "overall_mood": "professional|inspiring|dramatic|educational|storytelling",
    "intro_text": "short intro overlay text (5-8 words)",
    "outro_text": "short outro overlay text (5-8 words)",
    "scenes": [
        {
            "scene_number": 1,
            "narration": "what the narrator says (conversational, engaging, 2-4 sentences)",
            "visual_description": "what the viewer sees described cinematically",
            "mood": "mood for this scene",
            "source_pages": [1, 2],
            "duration_hint": 8.0,
            "generate_background": true,
            "background_prompt": "an image generation prompt for an atmospheric background",
            "use_uploaded_images": [],
            "layout_mode": "single"
        }
    ]
}

For each scene:
- **use_uploaded_images**: list the 0-based indices of images that should appear in that scene.
  Use EVERY uploaded image at least once (EXCEPT logos — logos are used as watermarks, not scene visuals).
  Assign images to the scenes where they are most relevant.
- **generate_background**: set true ONLY for scenes that have NO suitable uploaded images.
  If a scene already has good uploaded images, set this to false.
  Also set true for picture_in_picture scenes (the AI background is the full-frame backdrop).
- **source_pages**: section numbers this scene draws content from.
- **layout_mode**: choose the best visual composition for each scene:
  - "single" — one primary image with Ken Burns (best for photos, simple scenes)
  - "carousel" — cycle through multiple images with crossfades (best when a scene references 3+ images)
  - "split_screen" — side-by-side comparison layout (best for before/after, two charts, comparison images)
  - "picture_in_picture" — AI background full-frame with a figure/chart inset in a rounded corner card (best when you have a data visual like a chart or diagram AND want an atmospheric backdrop)

Layout selection rules:
- If a scene has only 1 non-logo image → "single"
- If a scene has 2 comparison images (is_comparison=true) → "split_screen"
- If a scene has 3+ images → "carousel"
- If a scene has a chart/diagram AND generate_background=true → "picture_in_picture"
- Photos classified as "photo" look best as "single" with full-bleed Ken Burns
- Tables classified as "table" are rendered as styled cards automatically regardless of layout
- Images classified as "logo" should NOT be in use_uploaded_images — they are auto-applied as watermarks

Guidelines:
- Combine related sections into single scenes (aim for 4-10 scenes total)
- Write narration that's conversational and engaging, 2-4 sentences per scene
- Reference the images in your narration when relevant (e.g., "As we can see here...")
- For scenes with strong uploaded images, let the visuals breathe — shorter narration
- Charts/diagrams need longer duration (use suggested_hold_seconds from classification)
- Only generate_background=true when a scene truly lacks visual content OR uses picture_in_picture
- Background prompts should describe abstract, atmospheric visuals (not text-heavy)
- Duration hints: 5-8s for simple scenes, 8-15s for complex or multi-image scenes
- The video should have narrative flow — one cohesive story

Return ONLY valid JSON, no markdown formatting.`

// Classifier batch prompt. Placeholders: batch size, start index.
var ImageClassifierPrompt = `Classify each of the following %d images. For each image (numbered starting from index %d), determine:
- **classification**: chart, photo, diagram, table, logo, or decorative
- **description**: brief 1-2 sentence description
- **has_data**: does it contain quantitative data/metrics?
- **is_comparison**: does it show before/after or side-by-side comparison?
- **visual_complexity**: low/medium/high
- **suggested_hold_seconds**: how long to display (3-10s based on complexity)

Classification guide:
- **chart**: bar charts, line graphs, pie charts, scatter plots, any data visualization
- **photo**: photographs, real-world images, screenshots of real scenes
- **diagram**: flowcharts, architecture diagrams, process flows, mind maps, technical drawings
- **table**: tabular data, spreadsheet-like grids, comparison matrices
- **logo**: company logos, brand marks, icons, small symbolic graphics
- **decorative**: backgrounds, textures, abstract art, dividers, ornamental graphics

Return ONLY valid JSON with a 'classifications' array containing one entry per image, each with
an 'index' field plus the six fields above.`

// Slide deck planner prompt. Placeholders: title, source type, sections JSON.
var SlidePlannerPrompt = `You are a world-class presentation designer creating slides in the style of
corporate training decks. The slides must look like professional infographics with a CLEAN WHITE
BACKGROUND, bold dark navy headlines, structured card layouts, flat vector icons, and color-coded
sections.

REFERENCE STYLE (match this exactly):
- WHITE or very light gray background — NOT dark themes
- Bold dark navy (#1B2A4A) headlines in large sans-serif font
- Smaller red (#C41E3A) section labels/pillar headers above the main headline
- Content organized in CARD LAYOUTS: rounded-corner cards with thin borders arranged in rows
- Each card has: a flat vector ICON at top, a navy header bar with white text, body text below
- Color-coded accents: green (#2E7D32) for positive/required, red (#C41E3A) for warnings/prohibited
- Process flows shown as horizontal card sequences with arrow connections
- Two-column comparison layouts with green "Must Have" vs red "Prohibited" headers
- Flat vector silhouette icons (people, objects, symbols) — NOT photos, NOT 3D
- Clean sans-serif typography, generous whitespace, never overcrowded

Title: %s
Source: %s

Content:
%s

Create a presentation script as JSON. Design 7-12 slides that tell a compelling story.

Slide types and when to use them:
- "title" — opening slide with title + subtitle on white background with a subtle accent graphic
- "content" — standard content slide with headline and bullet points in card layout
- "two_column" — side-by-side comparison cards (e.g., "Must Have" vs "Prohibited", "Before" vs "After")
- "key_point" — large bold statement centered, with a supporting icon or graphic
- "quote" — featured quote or important policy callout in a styled card
- "data" — process flow, timeline, or metrics displayed as connected cards with icons
- "section_break" — pillar/section transition with section number and title
- "closing" — final slide with summary checklist or call to action

For each slide:
- headline: concise, impactful (3-8 words)
- body: supporting text (1-2 sentences, can be empty)
- bullets: key points as SHORT phrases (3-5 max, can be empty)
- narration: what a presenter would say (2-4 sentences, conversational)
- visual_description: EXTREMELY DETAILED layout description for the image generator.
  Describe the EXACT layout: how many cards, what icons, what colors, what text goes where.
- accent_color: hex color for this slide's accent (navy #1B2A4A, red #C41E3A, green #2E7D32, blue #1565C0)

Theme: always use "corporate-white" — white backgrounds with navy/red/green accents.

JSON structure:
{
    "title": "presentation title",
    "subtitle": "short subtitle",
    "theme": "corporate-white",
    "slides": [
        {
            "slide_number": 1,
            "slide_type": "title",
            "headline": "...",
            "body": "...",
            "bullets": [],
            "narration": "...",
            "visual_description": "...",
            "accent_color": "#1B2A4A"
        }
    ]
}

Guidelines:
- Every slide MUST have an extremely detailed visual_description with specific layout instructions
- Bullet points should be SHORT phrases, not sentences
- Vary slide types for visual rhythm
- Use process flows (horizontal card sequences) for procedures and timelines
- Use two-column comparisons for do/don't, before/after, required/prohibited
- The narration should flow naturally as a spoken presentation

Return ONLY valid JSON, no markdown formatting.`

// Slide image prompt. Placeholders: presentation title, slide type,
// headline, body section, bullet section, accent color, layout description.
var SlideImagePrompt = `Create a professional presentation slide image in the style of a corporate
training deck. This must look like a real, polished infographic slide.

EXACT STYLE TO MATCH:
- CLEAN WHITE or very light gray (#F8F9FA) background — NOT dark
- Bold dark navy (#1B2A4A) headline text, large sans-serif font at the top
- Content organized in ROUNDED-CORNER CARDS with thin gray borders and subtle drop shadows
- Cards have: colored header bars (navy, green, or red) with white text, then body content below
- FLAT VECTOR ICONS — simple, clean silhouette-style (NOT 3D, NOT photographic)
- Color coding: green (#2E7D32) = positive/required, red (#C41E3A) = warning/prohibited,
  navy (#1B2A4A) = neutral/informational, blue (#1565C0) = highlights
- Clean sans-serif typography throughout, generous whitespace between elements
- Professional, corporate, training-deck aesthetic

SLIDE CONTENT:
- Presentation: %s
- Slide type: %s
- Headline: %s%s%s
- Accent color: %s

LAYOUT & VISUAL ELEMENTS:
%s

CRITICAL REQUIREMENTS:
- 16:9 landscape aspect ratio
- WHITE background — this is non-negotiable
- All text on the slide must be READABLE and properly rendered
- Include the headline, body text, and bullet points as actual text on the slide
- Use flat vector icons and illustrations, NOT photographs
- Cards should have rounded corners, thin borders, subtle shadows
- NO watermarks, NO placeholder text, NO lorem ipsum`

// BackgroundPromptPrefix is prepended to every scene background
// generation prompt.
const BackgroundPromptPrefix = "Cinematic, high-quality, 16:9 aspect ratio, atmospheric background. " +
	"No text or words in the image. Subtle depth of field. "
