package main

// exampleGoals are the sample tasks used by "batch --examples" and "demo".
var exampleGoals = []string{
	"Observe the current scene and describe what you see",
	"Create a red cube at position (0, 1, 0) and a blue sphere at position (2, 0, 0)",
	"Find the red cube and move it to position (0, 2, 0), then rotate it 45 degrees around the Y axis",
	`Create a scene with:
1. A green platform at position (0, 0, 0) with scale (3, 0.5, 3)
2. A red cube at position (0, 1, 0)
3. A blue sphere at position (2, 0.5, 0)
4. A yellow cylinder at position (-2, 0.5, 0)
Then move the red cube to sit on top of the green platform`,
	"Create a scene with a ground plane and a ball, then enable physics simulation to see the ball fall",
	"Create a scene with proper lighting - add a directional light and create objects with different materials",
}
