package main

import "github.com/Jorginton/f1-streamlit-dashboard/cmd"

func main() {
	cmd.Execute()
}
