package analyzer

import "fmt"

// These prompts are the wire contract with the vision model: the field names
// they mandate are the field names the parser decodes. Changing one side
// requires changing the other.

// SingleAnalysisPrompt evaluates one image against a strict rubric.
const SingleAnalysisPrompt = `You are an expert orange quality evaluator. Please evaluate with strict criteria.

## Evaluation Criteria (0-100 points each)

### 1. Color Score (40% weight)
- 90-100: Very deep orange, perfectly uniform, no green at all
- 70-89: Deep orange, mostly uniform, almost no green
- 50-69: Average orange, slightly uneven, some green present
- 30-49: Light orange, uneven, green areas present
- 0-29: Very light, very uneven, lots of green

### 2. Surface Score (30% weight)
- 90-100: Strong natural shine, smooth texture, small uniform pores
- 70-89: Moderate shine, good texture, decent pores
- 50-69: Average shine, average texture, average pores
- 30-49: Lack of shine, rough texture, large or uneven pores
- 0-29: No shine, very rough, problematic pores

### 3. Ripeness Score (30% weight)
- 90-100: Perfect ripeness, optimal firmness, peak freshness
- 70-89: Well ripened, good firmness, fresh
- 50-69: Moderately ripened, average firmness
- 30-49: Under-ripe or over-ripe, lacking firmness
- 0-29: Very unripe or severely over-ripe

## Sweetness Grade Criteria (based on total score) - Use only 3 grades
- **High** (12-14 Brix): Total score 75 or above
- **Medium** (10-12 Brix): Total score 50-74
- **Low** (8-10 Brix): Total score below 50

## Response Format (output JSON only)
` + "```json" + `
{
  "is_orange": true,
  "color_score": 0-100,
  "surface_score": 0-100,
  "ripeness_score": 0-100,
  "sweetness_score": 0-100,
  "sweetness_grade": "High" or "Medium" or "Low",
  "brix_min": number,
  "brix_max": number,
  "confidence_score": 0-100,
  "color_analysis": "Color analysis (specific evidence)",
  "surface_analysis": "Surface analysis (specific evidence)",
  "ripeness_analysis": "Ripeness analysis (specific evidence)",
  "analysis_reason": "Overall assessment (why this grade)"
}
` + "```" + `

**Important**:
- sweetness_grade must be exactly "High", "Medium", or "Low".
- Do NOT use other expressions like "Very High", "Average", etc.!
- Most regular supermarket oranges are "Medium" grade.
- "High" is only for premium quality oranges.
- If not an orange, respond with is_orange: false

Please analyze the image.`

const multiComparisonTemplate = `You are an expert orange quality evaluator.
Compare %[1]d orange images and rank them by expected sweetness level.

## Comparison Criteria
1. **Color**: Deeper orange and more uniform color indicates higher sweetness
2. **Shine**: More natural shine indicates higher sweetness
3. **Surface**: Smoother surface with moderate pores indicates higher sweetness
4. **Ripeness**: Properly ripened state indicates higher sweetness

## Cut Orange (cross-section visible) Evaluation
- For cut oranges, judge by **flesh color**
- Deep orange flesh with abundant juice means higher sweetness
- Light colored or dry-looking flesh means lower sweetness
- Compare fairly with whole oranges using same criteria

## Important Instructions
- You MUST distinguish **relative differences** between images
- Even if they look similar, find subtle differences and rank clearly
- No ties - assign different ranks from 1 to %[1]d
- Each image's sweetness_score should differ by at least 5 points
- Maintain consistency in ranking decisions

## Sweetness Grade Criteria - Use only 3 grades
- **High** (12-14 Brix): Total score 75 or above
- **Medium** (10-12 Brix): Total score 50-74
- **Low** (8-10 Brix): Total score below 50

## Response Format (output as JSON array)
` + "```json" + `
[
  {
    "image_index": 1,
    "rank": 1,
    "sweetness_score": 85,
    "sweetness_grade": "High",
    "brix_min": 12,
    "brix_max": 14,
    "confidence_score": 85,
    "color_analysis": "Color analysis",
    "surface_analysis": "Surface analysis",
    "ripeness_analysis": "Ripeness analysis",
    "analysis_reason": "Why this rank - explain compared to other images",
    "comparison_note": "What makes it better/worse than other images"
  },
  ...
]
` + "```" + `

**Important**: sweetness_grade must be exactly "High", "Medium", or "Low"!

Analyze the %[1]d images in order and rank them by sweetness level.
First image is image_index: 1, second is image_index: 2, etc.`

// MultiComparisonPrompt returns the relative-comparison prompt for the given
// image count.
func MultiComparisonPrompt(count int) string {
	return fmt.Sprintf(multiComparisonTemplate, count)
}
